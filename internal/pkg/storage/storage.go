package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Storage 存储接口
// 成片与分段备份统一通过这里落盘或上云
type Storage interface {
	// Upload 上传文件（服务端上传）
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载文件
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedDownloadURL 获取预签名下载URL
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetFileInfo 获取文件信息
	GetFileInfo(ctx context.Context, key string) (*FileInfo, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// FileInfo 文件信息
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)

// 对象 key 布局，按运行标识寻址
const (
	MergedKeyPrefix   = "merged/"   // 成片: merged/<run_id>.mp4
	SegmentsKeyPrefix = "segments/" // 分段备份: segments/<run_id>/<NN>.mp4
)

// MergedKey 成片对象 key
func MergedKey(runID string) string {
	return MergedKeyPrefix + runID + ".mp4"
}

// SegmentKey 分段备份对象 key
func SegmentKey(runID string, index int) string {
	return fmt.Sprintf("%s%s/%02d.mp4", SegmentsKeyPrefix, runID, index)
}

// VoiceKey 配音轨对象 key
func VoiceKey(runID string) string {
	return MergedKeyPrefix + runID + "_voice.mp3"
}
