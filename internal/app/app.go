package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	jgcfg "jongga/internal/config"
	"jongga/internal/decision"
	"jongga/internal/logger"
	"jongga/internal/storage"
	"jongga/internal/transport/web"
)

// 中文说明：
// 应用级编排：설정 로드 → 의존성 조립(wire) → 스케줄러/상태 API 기동。
// 일회성 모드(scan/buy/sell/portfolio)는 Engine 을 직접 노출해 처리한다。

// App 애플리케이션 오케스트레이터
type App struct {
	cfg    *jgcfg.Config
	engine *decision.Engine
	web    *web.Server
	sched  *Scheduler
	store  *storage.Store
}

// NewApp 설정으로 앱 구성（미기동）
func NewApp(cfg *jgcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Engine 일회성 모드용 엔진 접근
func (a *App) Engine() *decision.Engine { return a.engine }

// Run 데몬 모드 기동：스케줄러 + 상태 API。ctx 취소 시 정리。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.web != nil {
		group.Go(func() error {
			if err := a.web.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Warnf("상태 API 중단: %v", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		return a.sched.Run(ctx)
	})

	return group.Wait()
}

// Close 저장소 등 리소스 정리
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}
