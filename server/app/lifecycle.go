package app

import "context"

// Component 可啟動 / 可關閉的長生命週期元件（HTTP server、背景 worker 等）。
//   - Run 阻塞到元件停止為止（正常或錯誤）。
//   - Shutdown 要求優雅關閉，實作方應尊重 ctx 的期限。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}
