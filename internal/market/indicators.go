package market

import (
	talib "github.com/markcheno/go-talib"
)

// 中文说明：
// 均线等指标统一用 talib 计算。日线输入按时间升序（最老在前），
// 输出取最后一个有效值即当前指标。

// Closes 提取日线收盘价（升序）
func Closes(bars []DailyBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// MinuteCloses 提取分钟线收盘价（升序）
func MinuteCloses(bars []MinuteBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// SMA 最近一根的简单均线；数据不足返回 0
func SMA(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}
	out := talib.Sma(closes, period)
	return out[len(out)-1]
}

// EMA 最近一根的指数均线；数据不足返回 0
func EMA(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}
	out := talib.Ema(closes, period)
	return out[len(out)-1]
}

// IsNewHigh 当前收盘是否突破前 N 日最高价（不含当日）
func IsNewHigh(bars []DailyBar, days int) bool {
	if len(bars) < days+1 {
		return false
	}
	cur := bars[len(bars)-1].Close
	past := bars[len(bars)-1-days : len(bars)-1]
	high := 0.0
	for _, b := range past {
		if b.High > high {
			high = b.High
		}
	}
	return cur > high
}

// IsAligned 정배열：ma5 > ma20 > ma60
func IsAligned(closes []float64) bool {
	ma5 := SMA(closes, 5)
	ma20 := SMA(closes, 20)
	ma60 := SMA(closes, 60)
	if ma5 == 0 || ma20 == 0 || ma60 == 0 {
		return false
	}
	return ma5 > ma20 && ma20 > ma60
}

// AvgVolume 最近 N 日平均成交量（不含当日）
func AvgVolume(bars []DailyBar, days int) float64 {
	if len(bars) < days+1 {
		return 0
	}
	past := bars[len(bars)-1-days : len(bars)-1]
	sum := 0.0
	for _, b := range past {
		sum += float64(b.Volume)
	}
	return sum / float64(days)
}
