package drama

import (
	"time"

	"shotmove/internal/model/drama"
	httputil "shotmove/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// ShotInfo 分镜信息 DTO
type ShotInfo struct {
	Index       int     `json:"index"`                  // 全局序号
	ShotType    string  `json:"shot_type,omitempty"`    // 景别
	Description string  `json:"description"`            // 画面描述
	Dialogue    string  `json:"dialogue"`               // 台词
	VoiceID     string  `json:"voice_id,omitempty"`     // 选定音色
	Emotion     string  `json:"emotion,omitempty"`      // 情绪标签
	TargetSec   float64 `json:"target_sec,omitempty"`   // 规划时长
	Silent      bool    `json:"silent"`                 // 无台词镜头
	SegmentURL  string  `json:"segment_url,omitempty"`  // 分段备份URL
}

// TaskInfo 任务信息 DTO
type TaskInfo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Shots       []ShotInfo `json:"shots,omitempty"`
	MergedURL   string     `json:"merged_url,omitempty"`
	VoiceURL    string     `json:"voice_url,omitempty"`
	DurationSec float64    `json:"duration_sec,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// toTaskInfo 将 Task 实体转换为 TaskInfo DTO
func toTaskInfo(task *drama.Task) TaskInfo {
	info := TaskInfo{
		ID:          task.ID,
		Title:       task.Title,
		Status:      task.Status,
		MergedURL:   task.MergedURL,
		VoiceURL:    task.VoiceURL,
		DurationSec: task.DurationSec,
		Error:       task.Error,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	for _, shot := range task.Shots {
		info.Shots = append(info.Shots, ShotInfo{
			Index:       shot.Index,
			ShotType:    shot.ShotType,
			Description: shot.Description,
			Dialogue:    shot.Dialogue,
			VoiceID:     shot.VoiceID,
			Emotion:     shot.Emotion,
			TargetSec:   shot.TargetSec,
			Silent:      shot.Silent,
			SegmentURL:  shot.SegmentURL,
		})
	}
	return info
}

// toTaskInfoList 将 Task 列表转换为 TaskInfo 列表
func toTaskInfoList(tasks []*drama.Task) []TaskInfo {
	result := make([]TaskInfo, len(tasks))
	for i, task := range tasks {
		result[i] = toTaskInfo(task)
	}
	return result
}
