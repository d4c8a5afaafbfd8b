package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// tessdataURL points at the 4.0.0 tag of the tessdata repository.
var tessdataURL = "https://github.com/tesseract-ocr/tessdata/raw/4.0.0/%s.traineddata"

var tessdataClient = &http.Client{Timeout: 2 * time.Minute}

// EnsureTessdata downloads <lang>.traineddata into dir for every language
// that is not already present.
func EnsureTessdata(ctx context.Context, dir string, languages []string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create tessdata dir: %w", err)
	}
	for _, lang := range languages {
		dst := filepath.Join(dir, lang+".traineddata")
		if st, err := os.Stat(dst); err == nil && st.Size() > 0 {
			continue
		}
		log.Info().Str("language", lang).Str("dir", dir).Msg("Downloading traineddata for offline OCR")
		if err := downloadTraineddata(ctx, fmt.Sprintf(tessdataURL, lang), dst); err != nil {
			return fmt.Errorf("download %s traineddata: %w", lang, err)
		}
	}
	return nil
}

func downloadTraineddata(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := tessdataClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".traineddata-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
