package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// Upload is one file destined for a course.
type Upload struct {
	Filename string
	Content  io.Reader
}

// UploadCoursePDFs sends files as a single multipart batch. onProgress, when
// non-nil, receives the percentage of the encoded payload written to the
// wire. Because the request pipeline may replay the call once after a token
// refresh, the payload is buffered up front so the body can be rewound.
func (c *Client) UploadCoursePDFs(ctx context.Context, courseID int64, uploads []Upload, onProgress func(percent int)) ([]PDF, error) {
	if len(uploads) == 0 {
		return nil, errors.New("[Client.UploadCoursePDFs] no files to upload")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, up := range uploads {
		part, err := writer.CreateFormFile("pdfs", up.Filename)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.UploadCoursePDFs] create form file")
		}
		if _, err := io.Copy(part, up.Content); err != nil {
			return nil, errors.Wrapf(err, "[Client.UploadCoursePDFs] read %q", up.Filename)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "[Client.UploadCoursePDFs] finalize multipart body")
	}

	payload := buf.Bytes()
	url := fmt.Sprintf("%s/courses/%d/upload-pdfs/", c.baseURL, courseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, newProgressReader(payload, onProgress))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.UploadCoursePDFs] build request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = int64(len(payload))
	req.GetBody = func() (io.ReadCloser, error) {
		return newProgressReader(payload, onProgress), nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.UploadCoursePDFs] send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var pdfs []PDF
	if err := json.NewDecoder(resp.Body).Decode(&pdfs); err != nil {
		return nil, errors.Wrap(err, "[Client.UploadCoursePDFs] decode response")
	}
	return pdfs, nil
}

// progressReader reports read progress as a percentage of a known total.
type progressReader struct {
	reader     *bytes.Reader
	total      int
	read       int
	lastPct    int
	onProgress func(int)
}

func newProgressReader(payload []byte, onProgress func(int)) io.ReadCloser {
	return &progressReader{
		reader:     bytes.NewReader(payload),
		total:      len(payload),
		lastPct:    -1,
		onProgress: onProgress,
	}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += n
	if pr.onProgress != nil && pr.total > 0 {
		pct := pr.read * 100 / pr.total
		if pct != pr.lastPct {
			pr.lastPct = pct
			pr.onProgress(pct)
		}
	}
	return n, err
}

func (pr *progressReader) Close() error { return nil }
