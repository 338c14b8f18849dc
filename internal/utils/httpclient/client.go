package httpclient

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"LeagueSync/internal/config"

	"github.com/sirupsen/logrus"
)

// NewHTTPClient builds the client used for upstream page fetches: optional proxy, request
// timeout, and transparent gzip decoding.
func NewHTTPClient(cfg *config.ScraperConfig, logger *logrus.Logger) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: cfg.MaxConcurrent,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  true,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			logger.WithError(err).WithField("proxy", cfg.Proxy).Warn("invalid proxy url, connecting directly")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.WithField("proxy", cfg.Proxy).Info("http client using proxy")
		}
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &gzipTransport{next: transport, logger: logger},
	}
}

// gzipMagic opens every gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// gzipTransport asks for gzip and decodes it. A body labelled gzip that does not start
// with the gzip magic is passed through unchanged; one whose gzip header is broken
// fails the round trip.
type gzipTransport struct {
	next   http.RoundTripper
	logger *logrus.Logger
}

func (g *gzipTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := g.next.RoundTrip(req)
	if err != nil || !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return resp, err
	}

	buffered := bufio.NewReader(resp.Body)
	head, _ := buffered.Peek(len(gzipMagic))
	if !bytes.Equal(head, gzipMagic) {
		g.logger.WithField("url", req.URL.String()).Warn("response labelled gzip is not gzip, reading it as is")
		resp.Body = &bodyReadCloser{Reader: buffered, body: resp.Body}
		return resp, nil
	}

	decoded, err := gzip.NewReader(buffered)
	if err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("decode gzip response from %s: %w", req.URL, err)
	}
	resp.Body = &bodyReadCloser{Reader: decoded, body: resp.Body, decoder: decoded}
	resp.Header.Del("Content-Encoding")
	resp.ContentLength = -1
	return resp, nil
}

// bodyReadCloser reads through Reader and closes the decoder, if any, and the raw body.
type bodyReadCloser struct {
	io.Reader
	body    io.ReadCloser
	decoder io.Closer
}

func (b *bodyReadCloser) Close() error {
	var decodeErr error
	if b.decoder != nil {
		decodeErr = b.decoder.Close()
	}
	if err := b.body.Close(); err != nil {
		return err
	}
	return decodeErr
}
