package market

import (
	"fmt"
	"math"
	"strings"

	"jongga/internal/pkg/format"
)

// MinuteBars wraps a slice of MinuteBar for helper methods.
type MinuteBars []MinuteBar

// TimeString HHMMSS → "HH:MM" 표기
func (b MinuteBar) TimeString() string {
	if len(b.Time) < 4 {
		return "-"
	}
	return b.Time[:2] + ":" + b.Time[2:4]
}

// Summary 분봉 구간 요약 문자열。알림 메시지용。
// 예: "현재가 75,200원 (+0.27%/30분), 구간 75,000–75,600, 막봉 거래량 x1.4"
func (bs MinuteBars) Summary() string {
	if len(bs) == 0 {
		return ""
	}
	first := bs[0]
	last := bs[len(bs)-1]
	base := first.Open
	if base == 0 {
		base = first.Close
	}
	changePct := 0.0
	if base != 0 {
		changePct = (last.Close - base) / base * 100
	}
	low := math.MaxFloat64
	high := -math.MaxFloat64
	var volSum int64
	for _, bar := range bs {
		if bar.Low > 0 && bar.Low < low {
			low = bar.Low
		}
		if bar.High > high {
			high = bar.High
		}
		volSum += bar.Volume
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("현재가 %s원", format.Float(last.Close, 0)))
	if base != 0 {
		sb.WriteString(fmt.Sprintf(" (%+.2f%%/%d분)", changePct, len(bs)))
	}
	if low != math.MaxFloat64 && high > 0 {
		sb.WriteString(fmt.Sprintf(", 구간 %s–%s", format.Float(low, 0), format.Float(high, 0)))
	}
	if avg := float64(volSum) / float64(len(bs)); avg > 0 && last.Volume > 0 {
		sb.WriteString(fmt.Sprintf(", 막봉 거래량 x%.1f", float64(last.Volume)/avg))
	}
	return sb.String()
}
