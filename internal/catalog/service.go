// Package catalog lists, uploads, downloads and deletes files held by the
// data backend, and filters the fetched catalog locally.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"filedesk/internal/api"
	"filedesk/internal/model"
	"filedesk/internal/util/logx"
)

// ErrNoFileSelected is returned by Upload before any request is made.
var ErrNoFileSelected = errors.New("no file selected")

type UploadRejectedError struct {
	Status int
	Detail string
}

func (e *UploadRejectedError) Error() string {
	return fmt.Sprintf("upload rejected (HTTP %d): %s", e.Status, e.Detail)
}

// DeleteRejectedError carries the backend's detail verbatim.
type DeleteRejectedError struct {
	Status int
	Detail string
}

func (e *DeleteRejectedError) Error() string { return e.Detail }

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service { return &Service{client: client} }

// FetchAll returns the authoritative catalog in backend order.
func (s *Service) FetchAll(ctx context.Context) ([]model.FileRecord, error) {
	var out []model.FileRecord
	if err := s.client.JSON(ctx, http.MethodGet, "/api/data/files", nil, false, &out); err != nil {
		logx.Errorf("catalog: fetch failed: %v", err)
		return nil, err
	}
	if out == nil {
		out = []model.FileRecord{}
	}
	for i := range out {
		// a record without a filetype key never reaches FileType.UnmarshalJSON
		if out[i].FileType == "" {
			out[i].FileType = model.FileTypeOther
		}
	}
	logx.Debugf("catalog: fetched %d records", len(out))
	return out, nil
}

type UploadRequest struct {
	Path        string
	Title       string
	Description string
}

// Upload sends the file at req.Path. A blank title defaults to the file's
// base name, a blank description to "".
func (s *Service) Upload(ctx context.Context, req UploadRequest) (model.FileRecord, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return model.FileRecord{}, ErrNoFileSelected
	}
	f, err := os.Open(path)
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if fi, err := f.Stat(); err == nil && fi.IsDir() {
		return model.FileRecord{}, fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = name
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, f, name, title, req.Description))
	}()

	resp, err := s.client.Send(ctx, api.Request{
		Method:      http.MethodPost,
		Path:        "/api/data/upload",
		Body:        pr,
		ContentType: mw.FormDataContentType(),
	})
	if err != nil {
		pr.CloseWithError(err)
		return model.FileRecord{}, err
	}
	defer resp.Body.Close()
	if !api.OK(resp) {
		se := api.ReadStatusError(resp)
		logx.Warnf("catalog: upload of %s rejected: %v", name, se)
		return model.FileRecord{}, &UploadRejectedError{Status: se.Status, Detail: se.Detail}
	}
	rec := model.FileRecord{Filename: name, Title: title, Description: req.Description, FileType: model.FileTypeFor(name)}
	if err := decodeRecord(resp.Body, &rec); err != nil {
		logx.Warnf("catalog: upload response: %v", err)
	}
	logx.Infof("catalog: uploaded %s", rec.Filename)
	return rec, nil
}

func writeUpload(mw *multipart.Writer, src io.Reader, name, title, description string) error {
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	if err := mw.WriteField("title", title); err != nil {
		return err
	}
	if err := mw.WriteField("description", description); err != nil {
		return err
	}
	return mw.Close()
}

// Delete removes filename on the backend. Confirmation is up to the caller.
func (s *Service) Delete(ctx context.Context, filename string) error {
	resp, err := s.client.Send(ctx, api.Request{Method: http.MethodDelete, Path: "/api/data/files/" + api.Segment(filename)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !api.OK(resp) {
		se := api.ReadStatusError(resp)
		logx.Warnf("catalog: delete %s rejected: %v", filename, se)
		return &DeleteRejectedError{Status: se.Status, Detail: se.Detail}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	logx.Infof("catalog: deleted %s", filename)
	return nil
}

// DownloadURL is the direct reference to a file's raw bytes.
func (s *Service) DownloadURL(filename string) string {
	return s.client.URL("/api/data/download/" + api.Segment(filename))
}

// Download streams filename into dir and returns the written path and size.
func (s *Service) Download(ctx context.Context, filename, dir string) (string, int64, error) {
	resp, err := s.client.Send(ctx, api.Request{Method: http.MethodGet, Path: "/api/data/download/" + api.Segment(filename)})
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	if !api.OK(resp) {
		return "", 0, api.ReadStatusError(resp)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}
	dst := filepath.Join(dir, filepath.Base(filename))
	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", 0, fmt.Errorf("%w: download interrupted: %s", api.ErrNetwork, err.Error())
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", 0, err
	}
	logx.Infof("catalog: downloaded %s (%d bytes) to %s", filename, n, dst)
	return dst, n, nil
}
