package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jongga/internal/app"
	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
	"jongga/internal/pkg/format"
)

// 入口程序：
// 1) 加载 TOML 配置（JONGGA_CONFIG 或 configs/config.toml）
// 2) wire 로 의존성 조립
// 3) -mode 에 따라 일회성 사이클 또는 데몬 기동
//    scan      오후 스캔 (PHASE 1~3)
//    buy       종가 진입 사이클
//    sell      아침 청산 사이클
//    portfolio 계좌 현황 출력
//    daemon    스케줄러 + 상태 API 상주
func main() {
	mode := flag.String("mode", "daemon", "실행 모드: scan / buy / sell / portfolio / daemon")
	flag.Parse()

	cfgPath := os.Getenv("JONGGA_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.toml"
	}
	cfg, err := jgcfg.Load(cfgPath)
	if err != nil {
		log.Fatalf("설정 로드 실패: %v", err)
	}
	logger.Infof("✓ 설정 로드 완료 (환경=%s, 모의매매=%v)", cfg.App.Env, cfg.App.PaperTrading)

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("앱 초기화 실패: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "scan":
		if _, err := a.Engine().Scan(ctx); err != nil {
			log.Fatalf("스캔 실패: %v", err)
		}
	case "buy":
		if err := a.Engine().ClosingEntry(ctx); err != nil {
			log.Fatalf("진입 사이클 실패: %v", err)
		}
	case "sell":
		if err := a.Engine().MorningExit(ctx); err != nil {
			log.Fatalf("청산 사이클 실패: %v", err)
		}
	case "portfolio":
		acct, err := a.Engine().Portfolio(ctx)
		if err != nil {
			log.Fatalf("계좌 조회 실패: %v", err)
		}
		logger.Infof("현금 %s / 총자산 %s / 보유 %d종목",
			format.Won(acct.Cash), format.Won(acct.TotalAsset), len(acct.Holdings))
		for _, h := range acct.Holdings {
			logger.Infof("  %s(%s) %d주 @ %s", h.Name, h.Symbol, h.Quantity, format.Won(h.AvgPrice))
		}
	case "daemon":
		if err := a.Run(ctx); err != nil {
			log.Fatalf("데몬 종료: %v", err)
		}
	default:
		log.Fatalf("알 수 없는 모드: %s", *mode)
	}
}
