package format

import (
	"fmt"
	"strings"
	"time"
)

func Percent(val float64) string {
	if val == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", val*100)
}

func Float(val float64, decimals int) string {
	if decimals < 0 {
		decimals = 4
	}
	out := fmt.Sprintf("%.*f", decimals, val)
	out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	if out == "" {
		return "0"
	}
	return out
}

// Won 以亿韩元为单位展示大额金额，小额原样输出
func Won(val float64) string {
	const eok = 100_000_000
	if val >= eok {
		return fmt.Sprintf("%.0f억원", val/eok)
	}
	return fmt.Sprintf("%.0f원", val)
}

// ChangePct 带符号涨跌幅
func ChangePct(val float64) string {
	return fmt.Sprintf("%+.2f%%", val)
}

func Duration(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	d := time.Duration(ms) * time.Millisecond
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, d/time.Second)
	}
	return fmt.Sprintf("%ds", d/time.Second)
}
