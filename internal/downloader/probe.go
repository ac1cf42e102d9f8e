package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// probe asks the origin for its first byte and derives the authoritative size
// of the resource from the response headers.
func (d *Downloader) probe(ctx context.Context) (int64, error) {
	req, err := d.newRequest(ctx)
	if err != nil {
		return 0, httpError("error creating probe request", err)
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, httpError("error executing probe request", err)
	}
	defer resp.Body.Close()
	// The body is at most one byte from a compliant server. Draining lets the
	// connection return to the pool; a failed drain only costs reuse.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	ok := resp.StatusCode == http.StatusRequestedRangeNotSatisfiable ||
		(resp.StatusCode >= 200 && resp.StatusCode < 300)
	if !ok {
		return 0, httpError("probe", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
	size, found := AuthoritativeSize(resp.Header)
	if !found {
		return 0, &Error{Kind: KindUnsupportedServer, Op: "probe"}
	}
	return size, nil
}

// AuthoritativeSize reads the full resource length from a probe response:
// the total of Content-Range when present and numeric, else Content-Length.
func AuthoritativeSize(header http.Header) (int64, bool) {
	if total, ok := contentRangeTotal(header.Get("Content-Range")); ok {
		return total, true
	}
	if cl := strings.TrimSpace(header.Get("Content-Length")); cl != "" {
		if size, err := strconv.ParseInt(cl, 10, 64); err == nil && size >= 0 {
			return size, true
		}
	}
	return 0, false
}

// contentRangeTotal parses the total of "<unit> <first>-<last>/<total>" or
// "<unit> */<total>". An unknown total ("*") is not a size.
func contentRangeTotal(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	slash := strings.LastIndexByte(value, '/')
	if slash < 0 {
		return 0, false
	}
	total, err := strconv.ParseInt(strings.TrimSpace(value[slash+1:]), 10, 64)
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}
