// Package download 下载生成服务返回的媒体文件
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"shotmove/internal/pkg/retry"
)

const (
	defaultTimeout  = 5 * time.Minute
	defaultAttempts = 4
	defaultBackoff  = 2 * time.Second
)

// Downloader 媒体文件下载器
// 部分生成服务的 CDN 校验 Referer，缺省时直接 403
type Downloader struct {
	client  *http.Client
	referer string
	policy  retry.Policy
}

// NewDownloader 创建下载器，referer 为空时不带 Referer 头
func NewDownloader(referer string) *Downloader {
	return &Downloader{
		client:  &http.Client{Timeout: defaultTimeout},
		referer: referer,
		policy: retry.Policy{
			MaxAttempts: defaultAttempts,
			BaseDelay:   defaultBackoff,
		},
	}
}

// DownloadToFile 下载 url 到 outputPath，失败有界重试
// 先写临时文件再改名，避免半截文件被后续步骤当成完整分段
func (d *Downloader) DownloadToFile(ctx context.Context, url, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	err := d.policy.Do(ctx, "download", func() error {
		return d.downloadOnce(ctx, url, outputPath)
	}, func(error) bool { return true })
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}

	log.Info().Str("url", url).Str("path", outputPath).Msg("媒体文件下载完成")
	return nil
}

func (d *Downloader) downloadOnce(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if d.referer != "" {
		req.Header.Set("Referer", d.referer)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmpPath := outputPath + ".part"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close file: %w", err)
	}

	return os.Rename(tmpPath, outputPath)
}
