package demo_configs

import (
	"embed"
)

// ClassicName 內建三輪經典盤的設定檔名
const ClassicName = "classic.yaml"

//go:embed *.yaml
var FS embed.FS
