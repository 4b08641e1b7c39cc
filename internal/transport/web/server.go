package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	jgcfg "jongga/internal/config"
	"jongga/internal/decision"
	"jongga/internal/logger"
	"jongga/internal/risk"
)

// 中文说明：
// 상태 조회 HTTP API。레짐/가드/후보/포트폴리오를 JSON 으로 노출한다。
// 읽기 전용 — 주문류 조작은 제공하지 않는다。

// Server 상태 API 서버
type Server struct {
	cfg    jgcfg.WebConfig
	engine *decision.Engine
	regime *risk.MacroFilter
	guard  *risk.TradingGuard
	srv    *http.Server
}

// NewServer 라우트 구성 (미기동)
func NewServer(cfg jgcfg.WebConfig, env string, engine *decision.Engine, regime *risk.MacroFilter, guard *risk.TradingGuard) *Server {
	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		engine: engine,
		regime: regime,
		guard:  guard,
	}

	router.GET("/healthz", s.handleHealth)
	api := router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/regime", s.handleRegime)
		api.GET("/guard", s.handleGuard)
		api.GET("/candidates", s.handleCandidates)
		api.GET("/portfolio", s.handlePortfolio)
		api.GET("/trades", s.handleTrades)
	}

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start 서버 기동；ctx 취소 시 정상 종료
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("[WEB] 상태 API 기동: %s", s.cfg.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	idx, causes := s.regime.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"regime":       s.regime.Current(),
		"regime_cause": causes,
		"indices":      idx,
		"guard":        s.guard.Status(),
		"candidates":   len(s.engine.Candidates()),
	})
}

func (s *Server) handleRegime(c *gin.Context) {
	idx, causes := s.regime.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"regime":     s.regime.Current(),
		"multiplier": s.regime.Multiplier(),
		"causes":     causes,
		"indices":    idx,
	})
}

func (s *Server) handleGuard(c *gin.Context) {
	c.JSON(http.StatusOK, s.guard.Status())
}

func (s *Server) handleCandidates(c *gin.Context) {
	cands := s.engine.Candidates()
	out := make([]gin.H, 0, len(cands))
	for _, cd := range cands {
		out = append(out, gin.H{
			"symbol":    cd.Snapshot.Symbol,
			"name":      cd.Snapshot.Name,
			"theme":     cd.Snapshot.Theme,
			"tier":      int(cd.Tier),
			"price":     cd.Snapshot.Price,
			"change":    cd.Snapshot.ChangePct,
			"technical": cd.Technical.Score,
			"sentiment": cd.Sentiment.Score,
			"combined":  cd.Combined,
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "candidates": out})
}

func (s *Server) handleTrades(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	trades, err := s.engine.RecentTrades(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(trades), "trades": trades})
}

func (s *Server) handlePortfolio(c *gin.Context) {
	acct, err := s.engine.Portfolio(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, acct)
}
