// Package carousel 卡片轮播的几何计算与视图模型
package carousel

import "math"

const (
	// DefaultVisible 默认可见卡片数
	DefaultVisible = 5
	// DefaultGap 卡片间距（像素）
	DefaultGap = 16.0
)

// ScrollAmount 单次翻页的滚动距离，同时也是视口宽度
// round(cardWidth*visible + gap*(visible-1))
func ScrollAmount(cardWidth float64, visible int, gap float64) int {
	if cardWidth <= 0 || visible <= 0 {
		return 0
	}
	return int(math.Round(cardWidth*float64(visible) + gap*float64(visible-1)))
}

// TrackWidth 所有卡片排成一行的总宽度
func TrackWidth(cardWidth float64, items int, gap float64) float64 {
	if cardWidth <= 0 || items <= 0 {
		return 0
	}
	return cardWidth*float64(items) + gap*float64(items-1)
}
