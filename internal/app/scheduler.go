package app

import (
	"context"
	"time"

	jgcfg "jongga/internal/config"
	"jongga/internal/decision"
	"jongga/internal/logger"
	"jongga/internal/market"
	"jongga/internal/risk"
)

// 中文说明：
// 데몬 스케줄러。하루 단위로 고정된 시간대에 각 사이클을 디스패치한다:
//   08:30~10:00  아침 청산 (1분 간격)
//   14:30~15:10  오후 스캔 (10분 간격)
//   15:16~15:20  종가 진입 (30초 틱마다)
//   15:50~18:00  시간외 점검 (5분 간격)
// 날짜가 바뀌면 거시 레짐 고착을 해제한다。

const schedulerTick = 30 * time.Second

type cycleFunc func(context.Context) error

type scheduledCycle struct {
	name     string
	from, to string // "HH:MM" 폐구간
	every    time.Duration
	run      cycleFunc
	lastRun  time.Time
}

// Scheduler 시간대 기반 사이클 디스패처
type Scheduler struct {
	cfg    *jgcfg.Config
	engine *decision.Engine
	regime *risk.MacroFilter
	clock  market.Clock

	cycles  []*scheduledCycle
	lastDay string
}

func NewScheduler(cfg *jgcfg.Config, engine *decision.Engine, regime *risk.MacroFilter, clock market.Clock) *Scheduler {
	s := &Scheduler{cfg: cfg, engine: engine, regime: regime, clock: clock}
	scanOnly := func(ctx context.Context) error {
		_, err := engine.Scan(ctx)
		return err
	}
	s.cycles = []*scheduledCycle{
		{name: "아침 청산", from: "08:30", to: "10:00", every: time.Minute, run: engine.MorningExit},
		{name: "오후 스캔", from: "14:30", to: "15:10", every: 10 * time.Minute, run: scanOnly},
		{name: "종가 진입", from: "15:16", to: "15:20", every: schedulerTick, run: engine.ClosingEntry},
		{name: "시간외 점검", from: "15:50", to: "18:00", every: 5 * time.Minute, run: engine.AfterHours},
	}
	return s
}

// Run 틱 루프。ctx 취소 시 정상 종료。
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Infof("[스케줄러] 기동 (틱 %s)", schedulerTick)
	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("[스케줄러] 종료")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.clock.Now()

	if day := now.Format("2006-01-02"); day != s.lastDay {
		if s.lastDay != "" {
			s.regime.ResetDaily()
			s.engine.ResetDaily()
			logger.Infof("[스케줄러] 날짜 전환 %s — 레짐/분봉 누적 초기화", day)
		}
		s.lastDay = day
	}

	// 주말 휴장
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return
	}

	hm := now.Format("15:04")
	for _, c := range s.cycles {
		if hm < c.from || hm > c.to {
			continue
		}
		if !c.lastRun.IsZero() && now.Sub(c.lastRun) < c.every {
			continue
		}
		c.lastRun = now
		logger.Debugf("[스케줄러] %s 사이클 실행", c.name)
		if err := c.run(ctx); err != nil {
			logger.Errorf("[스케줄러] %s 사이클 실패: %v", c.name, err)
		}
	}
}
