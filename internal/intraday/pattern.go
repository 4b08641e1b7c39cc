package intraday

import (
	"fmt"
	"time"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
)

// 中文说明：
// PHASE 4 收盘窗口 V 형 반등 탐지。五项 MUST 逐级短路：任何一级失败
// 立即带该级名称返回，不再看后面的条件。全过后 base 50 分，
// 五项独立 BONUS 각 +10，封顶 100。

// PatternInput 收盘窗口实时切片（均为当刻值）
type PatternInput struct {
	Price        float64 // 현재가
	LowSince1500 float64 // 15:00 이후 저가
	MA5          float64 // 1분봉 5평선
	MA20         float64 // 1분봉 20평선
	MA20Prev     float64 // 직전 1분봉 20평선 (0이면 미확보)
	MA20Support  bool    // 최근 분봉 저가가 20평선을 찍고 종가가 위로 복귀
	ExecStrength float64 // 체결강도
	ExecPrev     float64 // 직전 체결강도
	ProgramNet3m float64 // 프로그램 순매수 (3분)
	SellOrderQty float64 // 총 매도잔량
	BuyOrderQty  float64 // 총 매수잔량
	MinuteVolume float64 // 최근 1분 거래량
	AvgMinuteVol float64 // 최근 N분 평균 거래량 (당분 제외)
}

// PatternResult PHASE 4 注解
type PatternResult struct {
	Passed     bool
	Score      int
	FailedRung string // 탈락한 MUST 단계명
	ReboundPct float64
}

// MUST 단계명（실패 사유로 그대로 노출）
const (
	rungWindow   = "진입 시간창 밖"
	rungRebound  = "저점 반등률 미달"
	rungMA5      = "1분 5평선 아래"
	rungExec     = "체결강도 미달/하락"
	rungProgram  = "프로그램 순매도"
	patternBase  = 50
	patternBonus = 10
	patternMax   = 100
)

// PatternDetector PHASE 4 탐지기
type PatternDetector struct {
	cfg         jgcfg.PatternConfig
	windowStart time.Duration // 자정 기준 오프셋
	windowEnd   time.Duration
}

func NewPatternDetector(cfg jgcfg.PatternConfig) (*PatternDetector, error) {
	start, err := clockOffset(cfg.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("pattern window_start: %w", err)
	}
	end, err := clockOffset(cfg.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("pattern window_end: %w", err)
	}
	return &PatternDetector{cfg: cfg, windowStart: start, windowEnd: end}, nil
}

func clockOffset(s string) (time.Duration, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// InWindow 当刻是否在 V 탐지 시간창 내
func (d *PatternDetector) InWindow(now time.Time) bool {
	off := time.Duration(now.Hour())*time.Hour +
		time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second
	return off >= d.windowStart && off <= d.windowEnd
}

// Detect 单只候选 PHASE 4 평가。MUST 사다리 → base → BONUS。
func (d *PatternDetector) Detect(symbol string, now time.Time, in PatternInput) PatternResult {
	res := PatternResult{}

	// MUST 1: 시간창
	if !d.InWindow(now) {
		res.FailedRung = rungWindow
		return res
	}
	// MUST 2: 15:00 이후 저점 대비 반등률
	if in.LowSince1500 <= 0 {
		res.FailedRung = rungRebound
		return res
	}
	res.ReboundPct = (in.Price - in.LowSince1500) / in.LowSince1500
	if res.ReboundPct < d.cfg.ReboundPct {
		res.FailedRung = rungRebound
		return res
	}
	// MUST 3: 1분봉 5평선 위
	if in.MA5 <= 0 || in.Price <= in.MA5 {
		res.FailedRung = rungMA5
		return res
	}
	// MUST 4: 체결강도 기준 이상 + 상승 중
	if in.ExecStrength < d.cfg.ExecStrength || in.ExecStrength <= in.ExecPrev {
		res.FailedRung = rungExec
		return res
	}
	// MUST 5: 프로그램 순매수 양수
	if in.ProgramNet3m <= 0 {
		res.FailedRung = rungProgram
		return res
	}

	res.Passed = true
	res.Score = patternBase

	// B1: 체결강도 강화 구간
	if in.ExecStrength >= d.cfg.StrongerExec {
		res.Score += patternBonus
	}
	// B2: 매도잔량 우위(종가 수급 역설) + 가격이 5평선 위 유지
	if in.BuyOrderQty > 0 && in.SellOrderQty/in.BuyOrderQty >= d.cfg.OrderImbRatio && in.Price > in.MA5 {
		res.Score += patternBonus
	}
	// B3: 1분봉 20평선 상승 전환 + 가격이 그 위
	if in.MA20Prev > 0 && in.MA20 > in.MA20Prev && in.Price > in.MA20 {
		res.Score += patternBonus
	}
	// B4: 분당 거래량 급증
	if in.AvgMinuteVol > 0 && in.MinuteVolume >= in.AvgMinuteVol*d.cfg.VolumeSurgeX {
		res.Score += patternBonus
	}
	// B5: 20평선 지지 후 반등 (저가 터치 → 종가 복귀, 현재가도 그 위)
	if in.MA20Support && in.MA20 > 0 && in.Price > in.MA20 {
		res.Score += patternBonus
	}
	if res.Score > patternMax {
		res.Score = patternMax
	}

	logger.Infof("[PHASE4] %s V 반등 감지: 점수 %d, 반등 %.2f%%", symbol, res.Score, res.ReboundPct*100)
	return res
}
