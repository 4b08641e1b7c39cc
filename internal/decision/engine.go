package decision

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	jgcfg "jongga/internal/config"
	"jongga/internal/ensemble"
	"jongga/internal/exits"
	"jongga/internal/intraday"
	"jongga/internal/logger"
	"jongga/internal/market"
	"jongga/internal/notify"
	"jongga/internal/pkg/format"
	"jongga/internal/position"
	"jongga/internal/risk"
	"jongga/internal/screener"
	"jongga/internal/sentiment"
	"jongga/internal/storage"
	"jongga/internal/store"
)

// 中文说明：
// 결정 엔진。오후 스캔(PHASE 1~3) → 종가 진입(PHASE 4 + 앙상블 + 사이징)
// → 익일 아침 청산(PHASE 5) → 시간외 점검，네 개 사이클을 조율한다。
// 행情 호출 실패는 해당 후보/보유만 건너뛰고 사이클은 계속된다。

// Deps 엔진 의존성 묶음 (wire 주입)
type Deps struct {
	Cfg       *jgcfg.Config
	Source    market.DataSource
	Broker    market.Broker
	Clock     market.Clock
	Universe  *screener.UniverseFilter
	Technical *screener.TechnicalScorer
	Sector    *screener.SectorAnalyzer
	Sentiment *sentiment.SentimentScorer
	Pattern   *intraday.PatternDetector
	Ensemble  *ensemble.Scorer
	Regime    *risk.MacroFilter
	Guard     *risk.TradingGuard
	Stops     *risk.StopLossEngine
	Sizer     *position.Sizer
	Trades    *storage.Store
	Bars      store.BarStore      // nil이면 메모리 구현 사용
	Global    market.GlobalQuotes // nil 허용，KIS 누락 지표 보충용
	Notifier  notify.TextNotifier // nil 허용
}

// Engine 일일 매매 결정 엔진
type Engine struct {
	Deps

	cache *candidateCache

	mu         sync.Mutex
	lastBuyQty map[string]float64 // 동시호가 매수잔량 급증 감지용
}

// NewEngine 엔진 구성
func NewEngine(deps Deps) *Engine {
	if deps.Bars == nil {
		deps.Bars = store.NewMemoryBarStore()
	}
	return &Engine{
		Deps:       deps,
		cache:      newCandidateCache(2 * time.Hour),
		lastBuyQty: make(map[string]float64),
	}
}

// ResetDaily 일자 전환 시 분봉 누적과 호가 관측치를 비운다
func (e *Engine) ResetDaily() {
	e.Bars.Reset()
	e.mu.Lock()
	e.lastBuyQty = make(map[string]float64)
	e.mu.Unlock()
}

func (e *Engine) notifyText(text string) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.SendText(text); err != nil {
		logger.Warnf("[알림] 전송 실패: %v", err)
	}
}

// RefreshRegime 지수 스냅샷으로 거시 레짐 갱신；전환 시 기록·통지
func (e *Engine) RefreshRegime(ctx context.Context) (risk.Regime, error) {
	idx, err := e.Source.Indices(ctx)
	if err != nil {
		return e.Regime.Current(), fmt.Errorf("지수 조회 실패: %w", err)
	}
	if e.Global != nil {
		if idx.VIX == 0 {
			if vix, err := e.Global.VIX(ctx); err == nil {
				idx.VIX = vix
			} else {
				logger.Debugf("[레짐] VIX 보충 실패: %v", err)
			}
		}
		if idx.USFuturesChangePct == 0 {
			if fut, err := e.Global.USFutures(ctx); err == nil {
				idx.USFuturesChangePct = fut
			} else {
				logger.Debugf("[레짐] 미국 선물 보충 실패: %v", err)
			}
		}
	}
	prev := e.Regime.Current()
	next := e.Regime.Update(idx)
	if next != prev {
		_, causes := e.Regime.Snapshot()
		reason := ""
		if len(causes) > 0 {
			reason = causes[0]
		}
		if e.Trades != nil {
			if err := e.Trades.LogRegime(ctx, string(next),
				idx.KospiChangePct, idx.KosdaqChangePct, idx.USFuturesChangePct, idx.VIX, reason); err != nil {
				logger.Warnf("[레짐] 기록 실패: %v", err)
			}
		}
		e.notifyText(fmt.Sprintf("거시 레짐 전환: %s → %s (%s)", prev, next, reason))
	}
	return next, nil
}

// Scan 오후 스캔 사이클。PHASE 1~3을 수행하고 후보를 캐시한다。
func (e *Engine) Scan(ctx context.Context) ([]Candidate, error) {
	now := e.Clock.Now()
	if _, err := e.RefreshRegime(ctx); err != nil {
		logger.Warnf("[스캔] %v", err)
	}

	// PHASE 1: 상승률 상위 → 하드 필터 + Tier
	snaps, err := e.Source.TopGainers(ctx, e.Cfg.Universe.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("상승률 상위 조회 실패: %w", err)
	}
	themeRising := e.Sector.Annotate(snaps)
	uni := e.Universe.Filter(snaps, themeRising)
	logger.Infof("[스캔] PHASE1 통과 %d/%d", len(uni), len(snaps))
	if len(uni) == 0 {
		e.cache.set(nil, now)
		return nil, nil
	}

	// PHASE 2: 일봉 확보 후 기술 점수 (병렬 조회)
	// ma60 정배열 판정에 60일치가 필요하므로 신고가 윈도우보다 짧아도 60일은 받는다
	days := e.Cfg.Technical.NewHighDays + 1
	if days < 60 {
		days = 60
	}
	inputs := make([]screener.TechnicalInput, len(uni))
	valid := make([]bool, len(uni))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(e.Cfg.KIS.LookupConcurrency)
	for i, u := range uni {
		group.Go(func() error {
			bars, err := e.Source.DailyBars(gctx, u.Snapshot.Symbol, days)
			if err != nil {
				logger.Warnf("[스캔] %s 일봉 조회 실패, 후보 제외: %v", u.Snapshot.Symbol, err)
				return nil
			}
			inputs[i] = screener.TechnicalInput{
				Snapshot:    u.Snapshot,
				DailyBars:   bars,
				ThemeRising: themeRising[u.Snapshot.Theme],
			}
			valid[i] = true
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	var enriched []screener.TechnicalInput
	tierOf := make(map[string]screener.Tier, len(uni))
	rankOf := make(map[string]int, len(uni))
	for i, u := range uni {
		if !valid[i] {
			continue
		}
		enriched = append(enriched, inputs[i])
		tierOf[u.Snapshot.Symbol] = u.Tier
		rankOf[u.Snapshot.Symbol] = u.ChangeRank
	}
	ranked, scores := e.Technical.Rank(enriched)
	logger.Infof("[스캔] PHASE2 통과 %d", len(ranked))

	// PHASE 3: 뉴스 수집 → VETO → 감성 점수 (병렬 조회)
	cands := make([]Candidate, len(ranked))
	passed := make([]bool, len(ranked))
	group, gctx = errgroup.WithContext(ctx)
	group.SetLimit(e.Cfg.KIS.LookupConcurrency)
	for i, in := range ranked {
		sc := scores[i]
		group.Go(func() error {
			sym, name := in.Snapshot.Symbol, in.Snapshot.Name
			data, err := e.Source.Sentiment(gctx, sym, name)
			if err != nil {
				logger.Warnf("[스캔] %s 뉴스 수집 실패, 후보 제외: %v", sym, err)
				return nil
			}
			senti := e.Sentiment.Score(sym, name, data)
			if !senti.Passed {
				return nil // VETO；사유는 스캐너가 기록
			}
			cands[i] = Candidate{
				Snapshot:   in.Snapshot,
				Tier:       tierOf[sym],
				ChangeRank: rankOf[sym],
				DailyBars:  in.DailyBars,
				Technical:  sc,
				Sentiment:  senti,
				News:       data,
				Combined:   sc.Score + senti.Score,
			}
			passed[i] = true
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	final := make([]Candidate, 0, len(cands))
	for i := range cands {
		if passed[i] {
			final = append(final, cands[i])
		}
	}
	sort.SliceStable(final, func(i, j int) bool { return final[i].Combined > final[j].Combined })
	if n := e.Cfg.Sentiment.FinalTopN; n > 0 && len(final) > n {
		final = final[:n]
	}
	e.cache.set(final, now)

	logger.Infof("[스캔] 최종 후보 %d\n%s", len(final), RenderCandidateTable(final))
	if len(final) > 0 {
		msg := fmt.Sprintf("오후 스캔: 후보 %d개 (1위 %s)", len(final), final[0].Snapshot.Name)
		if dominant := e.Sector.DominantSectors(snaps); len(dominant) > 0 {
			msg += " / 주도 테마 " + strings.Join(dominant, ", ")
		}
		e.notifyText(msg)
	}
	return final, nil
}

// ClosingEntry 종가 진입 사이클。PHASE 4 패턴 + 4로직 앙상블 + 사이징 + 주문。
func (e *Engine) ClosingEntry(ctx context.Context) error {
	now := e.Clock.Now()
	if _, err := e.RefreshRegime(ctx); err != nil {
		logger.Warnf("[진입] %v", err)
	}
	if !e.Regime.EntryAllowed() {
		logger.Warnf("[진입] 거시 레짐 %s — 전체 진입 차단", e.Regime.Current())
		return nil
	}
	if ok, reason := e.Guard.CanEnter(now); !ok {
		logger.Warnf("[진입] 차단: %s", reason)
		return nil
	}

	cands := e.cache.snapshot(now)
	if cands == nil {
		logger.Infof("[진입] 후보 캐시 없음 — 재스캔")
		var err error
		cands, err = e.Scan(ctx)
		if err != nil {
			return err
		}
	}
	if len(cands) == 0 {
		logger.Infof("[진입] 후보 없음")
		return nil
	}

	acct, err := e.Broker.Balance(ctx)
	if err != nil {
		return fmt.Errorf("잔고 조회 실패: %w", err)
	}
	stats, err := e.Trades.TradeStats(ctx, e.Cfg.Position.KellyRecentTrades)
	if err != nil {
		logger.Warnf("[진입] 매매 통계 조회 실패, 기본 켈리 사용: %v", err)
		stats = position.TradeStats{}
	}

	entered := 0
	for _, cand := range cands {
		if ok, reason := e.Guard.CanEnter(now); !ok {
			logger.Infof("[진입] 중단: %s", reason)
			break
		}
		// 스캔 이후 새로 뜬 공시/뉴스 재검사 (마감 직전 악재 차단)
		sym, name := cand.Snapshot.Symbol, cand.Snapshot.Name
		if data, err := e.Source.Sentiment(ctx, sym, name); err != nil {
			logger.Warnf("[진입] %s 뉴스 재조회 실패, 스캔 시점 결과 유지: %v", sym, err)
		} else if e.Sentiment.LateVeto(sym, name, headlines(data)) {
			logger.Warnf("[진입] %s(%s) 막판 VETO — 제외", name, sym)
			continue
		}
		res, sig, ok := e.evaluateEntry(ctx, now, cand)
		if !ok {
			continue
		}
		if res.Tier == ensemble.TierSkip {
			logger.Debugf("[진입] %s(%s) 앙상블 %.1f — SKIP", cand.Snapshot.Name, cand.Snapshot.Symbol, res.Score)
			continue
		}
		sz := e.Sizer.Size(acct, position.SizeRequest{
			Symbol:         cand.Snapshot.Symbol,
			Price:          sig.price,
			TierMultiplier: res.Multiplier,
			RegimeMult:     e.Regime.Multiplier(),
			Stats:          stats,
		})
		if sz.Skipped {
			logger.Infof("[진입] %s 사이징 제외: %s", cand.Snapshot.Symbol, sz.Reason)
			continue
		}
		if err := e.placeBuy(ctx, cand, res, sz, sig); err != nil {
			logger.Errorf("[진입] %s 주문 실패, 후보 폐기: %v", cand.Snapshot.Symbol, err)
			continue
		}
		e.Guard.RecordEntry(now)
		entered++
		// 연속 진입 간 잔고 정합 유지
		acct.Cash -= sz.Investment
		acct.Holdings = append(acct.Holdings, market.Holding{
			Symbol:   cand.Snapshot.Symbol,
			Name:     cand.Snapshot.Name,
			Quantity: sz.Quantity,
			AvgPrice: sig.price,
		})
	}
	logger.Infof("[진입] 사이클 종료: %d건 진입", entered)
	return nil
}

// entrySignals PHASE 4에서 수집한 중간 산출
type entrySignals struct {
	price   float64
	pattern intraday.PatternResult
	bars    market.MinuteBars
}

// evaluateEntry 단일 후보의 PHASE 4 + 앙상블 평가；행情 실패 시 ok=false
func (e *Engine) evaluateEntry(ctx context.Context, now time.Time, cand Candidate) (ensemble.Result, entrySignals, bool) {
	sym, name := cand.Snapshot.Symbol, cand.Snapshot.Name
	var sig entrySignals

	snap, err := e.Source.Snapshot(ctx, sym)
	if err != nil {
		logger.Warnf("[진입] %s 시세 조회 실패: %v", sym, err)
		return ensemble.Result{}, sig, false
	}
	bars, err := e.Source.MinuteBars(ctx, sym, 30)
	if err != nil {
		logger.Warnf("[진입] %s 분봉 조회 실패: %v", sym, err)
		return ensemble.Result{}, sig, false
	}
	ob, err := e.Source.OrderBook(ctx, sym)
	if err != nil {
		logger.Warnf("[진입] %s 호가 조회 실패: %v", sym, err)
		return ensemble.Result{}, sig, false
	}
	flow, err := e.Source.InvestorFlow(ctx, sym)
	if err != nil {
		logger.Warnf("[진입] %s 수급 조회 실패: %v", sym, err)
		return ensemble.Result{}, sig, false
	}
	strength, err := e.Source.ExecutionStrength(ctx, sym)
	if err != nil {
		logger.Warnf("[진입] %s 체결강도 조회 실패: %v", sym, err)
		return ensemble.Result{}, sig, false
	}

	sig.price = snap.Price
	sig.bars = bars
	closes := market.MinuteCloses(bars)
	var ma20Prev float64
	if len(closes) > 1 {
		ma20Prev = market.SMA(closes[:len(closes)-1], 20)
	}
	ma20 := market.SMA(closes, 20)
	sig.pattern = e.Pattern.Detect(sym, now, intraday.PatternInput{
		Price:        snap.Price,
		LowSince1500: lowSince(bars, "150000", snap.Price),
		MA5:          market.SMA(closes, 5),
		MA20:         ma20,
		MA20Prev:     ma20Prev,
		MA20Support:  ma20SupportRebound(bars, ma20, 5),
		ExecStrength: strength.Current,
		ExecPrev:     strength.Previous,
		ProgramNet3m: float64(flow.ProgramNet3Min),
		SellOrderQty: float64(ob.SellQty),
		BuyOrderQty:  float64(ob.BuyQty),
		MinuteVolume: lastMinuteVolume(bars),
		AvgMinuteVol: avgMinuteVolume(bars, 20),
	})

	tow := ensemble.TugOfWarScore(sym, name, ensemble.TugOfWarInput{
		Open:           snap.Open,
		Price:          snap.Price,
		PrevClose:      snap.PrevClose,
		High:           snap.High,
		ForeignNet:     float64(flow.ForeignNet),
		InstitutionNet: float64(flow.InstitutionNet),
		IndividualNet:  float64(flow.IndividualNet),
		NewHigh20d:     cand.Technical.NewHigh,
		MAAligned:      cand.Technical.Aligned,
		Overnight5d:    overnightReturns(cand.DailyBars, 5),
	})
	moc := ensemble.MOCScore(sym, name, ensemble.MOCInput{
		SellOrderQty:   float64(ob.SellQty),
		BuyOrderQty:    float64(ob.BuyQty),
		Price:          snap.Price,
		ExpectedClose:  ob.ExpectedClose,
		PriceAt1520:    priceAt(bars, "1520", snap.Price),
		BuyOrderSurge:  e.buyOrderSurge(sym, float64(ob.BuyQty)),
		ExpectedRising: ob.ExpectedClose > snap.Price,
	})
	news := ensemble.NewsScore(sym, name, ensemble.NewsInput{
		GoogleNewsCount:   cand.Sentiment.NewsCount,
		Headlines:         headlines(cand.News),
		SentimentPositive: cand.Sentiment.PositiveRate,
		SentimentNegative: cand.Sentiment.NegativeRate,
		PortalTop:         cand.News.PortalTop,
		DailyPatternMatch: dailyBullishPattern(cand.DailyBars),
	})

	res := e.Ensemble.Score(sym, name, ensemble.LogicScores{
		TugOfWar: tow.Score,
		VPattern: float64(sig.pattern.Score),
		MOC:      moc.Score,
		News:     news.Score,
	})
	return res, sig, true
}

// buyOrderSurge 직전 관측 대비 매수잔량 1.5배 이상 급증
func (e *Engine) buyOrderSurge(symbol string, buyQty float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.lastBuyQty[symbol]
	e.lastBuyQty[symbol] = buyQty
	return prev > 0 && buyQty >= prev*1.5
}

func (e *Engine) placeBuy(ctx context.Context, cand Candidate, res ensemble.Result, sz position.SizeResult, sig entrySignals) error {
	now := e.Clock.Now()
	order := market.Order{Symbol: cand.Snapshot.Symbol, Quantity: sz.Quantity}
	if e.Cfg.App.PaperTrading {
		logger.Infof("[주문] (모의) 매수 %s %d주 @ %s", order.Symbol, order.Quantity, format.Won(sig.price))
	} else {
		if err := e.Broker.PlaceBuy(ctx, order); err != nil {
			return err
		}
	}

	rec := storage.TradeRecord{
		Symbol:        cand.Snapshot.Symbol,
		Name:          cand.Snapshot.Name,
		Theme:         cand.Snapshot.Theme,
		EntryDate:     now.Format("2006-01-02"),
		EntryTime:     now.Format("15:04:05"),
		EntryPrice:    sig.price,
		Quantity:      sz.Quantity,
		WeightPct:     sz.Weight * 100,
		Phase2Score:   cand.Technical.Score,
		Phase3Score:   cand.Sentiment.Score,
		VPatternScore: sig.pattern.Score,
		EnsembleScore: res.Score,
		Logic1Tow:     res.Logic.TugOfWar,
		Logic2V:       res.Logic.VPattern,
		Logic3Moc:     res.Logic.MOC,
		Logic4News:    res.Logic.News,
	}
	if _, err := e.Trades.InsertTrade(ctx, rec); err != nil {
		logger.Warnf("[진입] %s 기록 실패: %v", cand.Snapshot.Symbol, err)
	}
	msg := fmt.Sprintf("진입 %s(%s) %s %d주 @ %s 앙상블 %.1f (%s)",
		cand.Snapshot.Name, cand.Snapshot.Symbol, res.Tier, sz.Quantity,
		format.Won(sig.price), res.Score, res.DominantLogic)
	if summary := sig.bars.Summary(); summary != "" {
		msg += "\n" + summary
	}
	e.notifyText(msg)
	logger.Infof("[진입] %s(%s) %s %d주 비중 %.1f%% 주도로직 %s",
		cand.Snapshot.Name, cand.Snapshot.Symbol, res.Tier, sz.Quantity, sz.Weight*100, res.DominantLogic)
	return nil
}

// MorningExit 익일 아침 청산 사이클。5단계 손절 사다리 → 시나리오 분기。
func (e *Engine) MorningExit(ctx context.Context) error {
	now := e.Clock.Now()
	idx, err := e.Source.Indices(ctx)
	if err != nil {
		logger.Warnf("[청산] 지수 조회 실패, 코스피 0으로 간주: %v", err)
	}

	acct, err := e.Broker.Balance(ctx)
	if err != nil {
		return fmt.Errorf("잔고 조회 실패: %w", err)
	}
	if len(acct.Holdings) == 0 {
		logger.Infof("[청산] 보유 없음")
		return nil
	}
	e.Stops.SetTotalAsset(acct.TotalAsset)

	openBySymbol := map[string]storage.TradeRecord{}
	if trades, err := e.Trades.OpenTrades(ctx); err != nil {
		logger.Warnf("[청산] 미청산 기록 조회 실패: %v", err)
	} else {
		for _, t := range trades {
			openBySymbol[t.Symbol] = t
		}
	}

	for _, h := range acct.Holdings {
		snap, err := e.Source.Snapshot(ctx, h.Symbol)
		if err != nil {
			logger.Warnf("[청산] %s 시세 조회 실패, 다음 틱 재평가: %v", h.Symbol, err)
			continue
		}
		bars, err := e.Source.MinuteBars(ctx, h.Symbol, 30)
		if err != nil {
			logger.Warnf("[청산] %s 분봉 조회 실패: %v", h.Symbol, err)
			continue
		}
		// API는 최근 30개만 주므로 개장 이후 분봉을 틱마다 누적해 둔다
		if err := e.Bars.Put(ctx, h.Symbol, bars, 240); err == nil {
			if merged, err := e.Bars.Get(ctx, h.Symbol); err == nil && len(merged) > len(bars) {
				bars = merged
			}
		}
		daily, err := e.Source.DailyBars(ctx, h.Symbol, 21)
		if err != nil {
			logger.Warnf("[청산] %s 일봉 조회 실패: %v", h.Symbol, err)
			continue
		}

		stop := e.Stops.Evaluate(now, risk.StopInput{
			EntryPrice:  h.AvgPrice,
			Price:       snap.Price,
			Quantity:    h.Quantity,
			OpenPrice:   snap.Open,
			KospiChange: idx.KospiChangePct,
			MA20:        market.SMA(market.Closes(daily), 20),
		})

		var sellQty int64
		var scenario, reason string
		if stop.Triggered {
			sellQty = h.Quantity
			scenario, reason = string(stop.Type), stop.Reason
		} else {
			dec := exits.Resolve(h.AvgPrice, snap.Open, snap.Price, now)
			sellQty = dec.SellQuantity(h.Quantity)
			scenario, reason = string(dec.Scenario), dec.Reason
			if sellQty == 0 {
				if sig := exits.ThreeMinuteRule(h.Symbol, snap.Open, bars); sig.Sell {
					sellQty, reason = h.Quantity, sig.Reason
				} else if sig := exits.EMATrail(h.Symbol, snap.Price, bars, e.Cfg.Risk.EMABreakPct); sig.Sell {
					sellQty, reason = h.Quantity, sig.Reason
				}
			}
		}
		if sellQty == 0 {
			logger.Debugf("[청산] %s 보유 유지 (%s)", h.Symbol, scenario)
			continue
		}
		e.executeSell(ctx, now, h, snap.Price, sellQty, scenario, reason, openBySymbol)
	}
	return nil
}

// AfterHours 시간외 점검 사이클。동시호가 잔량/단일가 변동 기반 부분 청산。
func (e *Engine) AfterHours(ctx context.Context) error {
	now := e.Clock.Now()
	hm := now.Format("15:04")

	acct, err := e.Broker.Balance(ctx)
	if err != nil {
		return fmt.Errorf("잔고 조회 실패: %w", err)
	}
	if len(acct.Holdings) == 0 {
		return nil
	}

	openBySymbol := map[string]storage.TradeRecord{}
	if trades, err := e.Trades.OpenTrades(ctx); err != nil {
		logger.Warnf("[시간외] 미청산 기록 조회 실패: %v", err)
	} else {
		for _, t := range trades {
			openBySymbol[t.Symbol] = t
		}
	}

	for _, h := range acct.Holdings {
		snap, err := e.Source.Snapshot(ctx, h.Symbol)
		if err != nil {
			logger.Warnf("[시간외] %s 시세 조회 실패: %v", h.Symbol, err)
			continue
		}

		var ratio float64
		var reason string
		switch {
		case hm >= "15:50" && hm <= "15:59":
			ob, err := e.Source.OrderBook(ctx, h.Symbol)
			if err != nil {
				logger.Warnf("[시간외] %s 호가 조회 실패: %v", h.Symbol, err)
				continue
			}
			ratio = exits.Rule359(float64(ob.SellQty), float64(ob.BuyQty))
			reason = "동시호가 매도잔량 우위"
		case hm >= "16:00":
			ratio = exits.OvernightExit(snap.ChangePct)
			reason = "시간외 단일가 변동"
		}
		if ratio <= 0 {
			continue
		}
		qty := int64(float64(h.Quantity) * ratio)
		if ratio >= 1 {
			qty = h.Quantity
		}
		if qty < 1 {
			continue
		}
		e.executeSell(ctx, now, h, snap.Price, qty, "AFTER_HOURS", reason, openBySymbol)
	}
	return nil
}

func (e *Engine) executeSell(ctx context.Context, now time.Time, h market.Holding,
	price float64, qty int64, scenario, reason string, openBySymbol map[string]storage.TradeRecord) {
	order := market.Order{Symbol: h.Symbol, Quantity: qty}
	if e.Cfg.App.PaperTrading {
		logger.Infof("[주문] (모의) 매도 %s %d주 @ %s", order.Symbol, qty, format.Won(price))
	} else {
		if err := e.Broker.PlaceSell(ctx, order); err != nil {
			logger.Errorf("[청산] %s 매도 주문 실패, 다음 틱 재평가: %v", h.Symbol, err)
			return
		}
	}

	var pnlPct float64
	if h.AvgPrice > 0 {
		pnlPct = (price - h.AvgPrice) / h.AvgPrice * 100
	}
	// 전량 청산 시에만 결과 확정（부분 청산 잔량은 다음 틱 재평가）
	if qty >= h.Quantity {
		e.Guard.RecordResult(now, h.Symbol, pnlPct)
		if rec, ok := openBySymbol[h.Symbol]; ok {
			err := e.Trades.UpdateTradeExit(ctx, rec.ID, storage.ExitInfo{
				ExitDate:   now.Format("2006-01-02"),
				ExitTime:   now.Format("15:04:05"),
				ExitPrice:  price,
				Scenario:   scenario,
				Reason:     reason,
				Pnl:        (price - h.AvgPrice) * float64(qty),
				PnlPercent: pnlPct,
			})
			if err != nil {
				logger.Warnf("[청산] %s 기록 실패: %v", h.Symbol, err)
			}
		}
	}
	e.notifyText(fmt.Sprintf("청산 %s(%s) %d주 @ %s %s [%s] %s",
		h.Name, h.Symbol, qty, format.Won(price), format.ChangePct(pnlPct), scenario, reason))
	logger.Infof("[청산] %s(%s) %d주 %s [%s] %s",
		h.Name, h.Symbol, qty, format.ChangePct(pnlPct), scenario, reason)
}

// Portfolio 보유/계좌 현황 (상태 API·portfolio 모드용)
func (e *Engine) Portfolio(ctx context.Context) (market.Account, error) {
	return e.Broker.Balance(ctx)
}

// Candidates 최근 스캔 결과의 복사본
func (e *Engine) Candidates() []Candidate {
	return e.cache.snapshot(e.Clock.Now())
}

// RecentTrades 최근 매매 기록 (최신순)
func (e *Engine) RecentTrades(ctx context.Context, limit int) ([]storage.TradeRecord, error) {
	return e.Trades.RecentTrades(ctx, limit)
}

// lowSince 기준 시각(HHMMSS) 이후 분봉 저가；분봉 없으면 fallback
func lowSince(bars []market.MinuteBar, from string, fallback float64) float64 {
	low := 0.0
	for _, b := range bars {
		if b.Time < from {
			continue
		}
		if low == 0 || b.Low < low {
			low = b.Low
		}
	}
	if low == 0 {
		return fallback
	}
	return low
}

// priceAt 기준 시각(HHMM)과 같거나 앞선 마지막 분봉 종가
func priceAt(bars []market.MinuteBar, hhmm string, fallback float64) float64 {
	price := 0.0
	for _, b := range bars {
		if len(b.Time) >= 4 && b.Time[:4] <= hhmm {
			price = b.Close
		}
	}
	if price == 0 {
		return fallback
	}
	return price
}

// ma20SupportRebound 최근 n개 분봉 중 저가가 20평선 이하로 닿고
// 종가는 그 위로 복귀한 봉이 있는지 (지지 후 반등)
func ma20SupportRebound(bars []market.MinuteBar, ma20 float64, n int) bool {
	if ma20 <= 0 {
		return false
	}
	recent := bars
	if len(recent) > n {
		recent = recent[len(recent)-n:]
	}
	for _, b := range recent {
		if b.Low <= ma20 && b.Close > ma20 {
			return true
		}
	}
	return false
}

func lastMinuteVolume(bars []market.MinuteBar) float64 {
	if len(bars) == 0 {
		return 0
	}
	return float64(bars[len(bars)-1].Volume)
}

// avgMinuteVolume 마지막 분봉 제외 최근 n개 평균
func avgMinuteVolume(bars []market.MinuteBar, n int) float64 {
	if len(bars) < 2 {
		return 0
	}
	prev := bars[:len(bars)-1]
	if len(prev) > n {
		prev = prev[len(prev)-n:]
	}
	sum := 0.0
	for _, b := range prev {
		sum += float64(b.Volume)
	}
	return sum / float64(len(prev))
}
