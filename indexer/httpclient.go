package indexer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"
)

const (
	// Default http client timeout in secs.
	defaultHttpClientTimeout = 10 * time.Second
)

type (
	// Client is the base for http calls to the indexing service.
	Client struct {
		httpClient *http.Client
		Debug      bool
		BaseUrl    string
		UserAgent  string
		ReqFilter  RequestFilter
	}

	// RequestFilter can rewrite or replace an outgoing request, e.g. to
	// attach authentication.
	RequestFilter func(info RequestInfo) (req *http.Request, err error)

	// ClientConf models http client configurations.
	ClientConf struct {
		Debug     bool
		BaseUrl   string
		UserAgent string
	}

	// RequestInfo models the http request data.
	RequestInfo struct {
		Method  string
		Url     string
		Payload interface{}
	}
)

// NewClient returns a new HTTP client for the service at conf.BaseUrl.
func NewClient(conf *ClientConf) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultHttpClientTimeout},
		Debug:      conf.Debug,
		BaseUrl:    conf.BaseUrl,
		UserAgent:  conf.UserAgent,
	}
}

func (c *Client) dumpRequest(r *http.Request) {
	if r == nil {
		log.Debug("dumpReq ok: <nil>")
		return
	}
	dump, err := httputil.DumpRequest(r, true)
	if err != nil {
		log.Debugf("dumpReq err: %v", err)
	} else {
		log.Debugf("dumpReq ok: %v", string(dump))
	}
}

func (c *Client) dumpResponse(r *http.Response) {
	if r == nil {
		log.Debug("dumpResponse ok: <nil>")
		return
	}
	dump, err := httputil.DumpResponse(r, true)
	if err != nil {
		log.Debugf("dumpResponse err: %v", err)
	} else {
		log.Debugf("dumpResponse ok: %v", string(dump))
	}
}

func (c *Client) makeRequest(info RequestInfo) (*http.Request, error) {
	if c.ReqFilter != nil {
		return c.ReqFilter(info)
	}

	var body io.Reader
	if info.Payload != nil {
		encoded, err := json.Marshal(info.Payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(info.Method, info.Url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Add("accept", "application/json")
	if info.Payload != nil {
		req.Header.Add("content-type", "application/json; charset=utf-8")
	}
	if c.UserAgent != "" {
		req.Header.Add("user-agent", c.UserAgent)
	}
	return req, nil
}

// Do sends the described request and decodes the JSON response body into
// respObj.
func (c *Client) Do(method, path string, queryParams url.Values, payload, respObj interface{}) error {
	requestUrl := c.BaseUrl + path
	if len(queryParams) > 0 {
		requestUrl += "?" + queryParams.Encode()
	}

	req, err := c.makeRequest(RequestInfo{Method: method, Url: requestUrl, Payload: payload})
	if err != nil {
		return err
	}
	if c.Debug {
		c.dumpRequest(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if c.Debug {
		c.dumpResponse(resp)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status: %s", resp.Status)
	}
	if respObj == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(respObj)
}
