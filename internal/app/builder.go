package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"jongga/internal/broker/kis"
	jgcfg "jongga/internal/config"
	"jongga/internal/decision"
	"jongga/internal/ensemble"
	"jongga/internal/intraday"
	"jongga/internal/logger"
	"jongga/internal/market"
	"jongga/internal/notify"
	"jongga/internal/position"
	"jongga/internal/risk"
	"jongga/internal/screener"
	"jongga/internal/sentiment"
	"jongga/internal/storage"
	"jongga/internal/transport/web"
)

// AppBuilder 설정으로부터 전체 의존성 그래프를 조립한다
type AppBuilder struct {
	cfg *jgcfg.Config
}

func NewAppBuilder(cfg *jgcfg.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// Build 컴포넌트 조립。실패 시 살아있는 리소스 없이 에러 반환。
func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	cfg := b.cfg

	client, err := kis.NewClient(cfg.KIS)
	if err != nil {
		return nil, fmt.Errorf("KIS 클라이언트 초기화 실패: %w", err)
	}
	source := kis.NewSource(client)
	logger.Infof("✓ KIS 접속 구성: %s", cfg.KIS.BaseURL)

	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("저장소 디렉터리 생성 실패: %w", err)
		}
	}
	store, err := storage.NewStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("저장소 초기화 실패: %w", err)
	}
	success := false
	defer func() {
		if !success {
			_ = store.Close()
		}
	}()

	var notifier notify.TextNotifier
	if cfg.Notify.Telegram.Enabled {
		notifier = notify.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
		logger.Infof("✓ Telegram 알림 활성화")
	}

	pattern, err := intraday.NewPatternDetector(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("패턴 감지기 초기화 실패: %w", err)
	}

	regime := risk.NewMacroFilter(cfg.Risk)
	guard := risk.NewTradingGuard(cfg.Risk)
	veto := sentiment.NewVetoScanner()

	var themes screener.ThemeProvider = screener.NewStaticThemeProvider(nil)
	if cfg.Universe.ThemeAPIURL != "" {
		themes = screener.NewHTTPThemeProvider(cfg.Universe.ThemeAPIURL)
	}
	keywords, err := themes.Themes(ctx)
	if err != nil {
		logger.Warnf("테마 사전 로드 실패(%s), 내장 사전 사용: %v", themes.Name(), err)
		keywords = nil
	}

	engine := decision.NewEngine(decision.Deps{
		Cfg:       cfg,
		Source:    source,
		Broker:    source,
		Clock:     market.SystemClock{},
		Universe:  screener.NewUniverseFilter(cfg.Universe),
		Technical: screener.NewTechnicalScorer(cfg.Technical),
		Sector:    screener.NewSectorAnalyzerWith(keywords),
		Sentiment: sentiment.NewSentimentScorer(cfg.Sentiment, veto),
		Pattern:   pattern,
		Ensemble:  ensemble.NewScorer(cfg.Ensemble),
		Regime:    regime,
		Guard:     guard,
		Stops:     risk.NewStopLossEngine(cfg.Risk),
		Sizer:     position.NewSizer(cfg.Position),
		Trades:    store,
		Global:    market.NewYahooFetcher(""),
		Notifier:  notifier,
	})

	var webSrv *web.Server
	if cfg.Web.Enabled {
		webSrv = web.NewServer(cfg.Web, cfg.App.Env, engine, regime, guard)
	}

	if cfg.App.PaperTrading {
		logger.Infof("✓ 모의 매매 모드 — 실제 주문 미발행")
	}

	success = true
	return &App{
		cfg:    cfg,
		engine: engine,
		web:    webSrv,
		sched:  NewScheduler(cfg, engine, regime, market.SystemClock{}),
		store:  store,
	}, nil
}
