package capgains

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
)

// http helpers for the remote price providers

// dailyCache caches whole HTTP responses on disk. The cache key embeds
// the current date, so every entry expires at midnight; historical price
// endpoints never change intra-day, which makes this safe.
type dailyCache struct {
	base http.RoundTripper
}

func (c *dailyCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := cacheKey(req)
	if resp, err := c.load(key, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.store(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

func cacheKey(req *http.Request) string {
	plain := fmt.Sprintf("%s %s %s", Today(), req.Method, req.URL)
	return fmt.Sprintf("%x", sha1.Sum([]byte(plain)))
}

func (c *dailyCache) load(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

func (c *dailyCache) store(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(os.TempDir(), key), content, 0644)
}

// daily returns a client whose responses are cached until the end of the day.
func daily() *http.Client {
	return &http.Client{Transport: &dailyCache{http.DefaultTransport}}
}

// jwget performs an HTTP GET request and unmarshals the JSON response
// into the provided data structure.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
