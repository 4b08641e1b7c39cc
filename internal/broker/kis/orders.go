package kis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jongga/internal/market"
)

// Trading surface of the KIS OpenAPI: cash orders and account balance.

type orderPayload struct {
	AccountNo   string `json:"CANO"`
	AccountCode string `json:"ACNT_PRDT_CD"`
	Symbol      string `json:"PDNO"`
	OrderType   string `json:"ORD_DVSN"` // 00 지정가 / 01 시장가
	Quantity    string `json:"ORD_QTY"`
	Price       string `json:"ORD_UNPR"`
}

type orderResponse struct {
	RtCd string `json:"rt_cd"`
	Msg  string `json:"msg1"`
}

func (s *Source) placeOrder(ctx context.Context, trID string, order market.Order) error {
	if order.Symbol == "" || order.Quantity <= 0 {
		return fmt.Errorf("非法委托: symbol=%q qty=%d", order.Symbol, order.Quantity)
	}
	ordDvsn := "01" // 市价
	price := "0"
	if order.Price > 0 {
		ordDvsn = "00"
		price = strconv.FormatFloat(order.Price, 'f', 0, 64)
	}
	payload := orderPayload{
		AccountNo:   s.client.accountNo,
		AccountCode: s.client.acntCode,
		Symbol:      order.Symbol,
		OrderType:   ordDvsn,
		Quantity:    strconv.FormatInt(order.Quantity, 10),
		Price:       price,
	}
	var resp orderResponse
	if err := s.client.doRequest(ctx, http.MethodPost,
		"/uapi/domestic-stock/v1/trading/order-cash", trID, nil, payload, &resp); err != nil {
		return err
	}
	if strings.TrimSpace(resp.RtCd) != "0" {
		return fmt.Errorf("KIS 拒绝委托: %s", strings.TrimSpace(resp.Msg))
	}
	return nil
}

// PlaceBuy 现金买入委托
func (s *Source) PlaceBuy(ctx context.Context, order market.Order) error {
	return s.placeOrder(ctx, trOrderCashBuy, order)
}

// PlaceSell 现金卖出委托
func (s *Source) PlaceSell(ctx context.Context, order market.Order) error {
	return s.placeOrder(ctx, trOrderCashSell, order)
}

type balanceOutput struct {
	Output1 []struct {
		Symbol   string `json:"pdno"`
		Name     string `json:"prdt_name"`
		Quantity string `json:"hldg_qty"`
		AvgPrice string `json:"pchs_avg_pric"`
	} `json:"output1"`
	Output2 []struct {
		Cash       string `json:"dnca_tot_amt"`
		TotalAsset string `json:"tot_evlu_amt"`
	} `json:"output2"`
}

// Balance 账户现金、总资产与持仓
func (s *Source) Balance(ctx context.Context) (market.Account, error) {
	q := url.Values{}
	q.Set("CANO", s.client.accountNo)
	q.Set("ACNT_PRDT_CD", s.client.acntCode)
	q.Set("AFHR_FLPR_YN", "N")
	q.Set("OFL_YN", "")
	q.Set("INQR_DVSN", "02")
	q.Set("UNPR_DVSN", "01")
	q.Set("FUND_STTL_ICLD_YN", "N")
	q.Set("FNCG_AMT_AUTO_RDPT_YN", "N")
	q.Set("PRCS_DVSN", "00")
	q.Set("CTX_AREA_FK100", "")
	q.Set("CTX_AREA_NK100", "")
	var out balanceOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/trading/inquire-balance", trBalance, q, nil, &out); err != nil {
		return market.Account{}, err
	}
	acct := market.Account{}
	for _, row := range out.Output1 {
		qty := i64(row.Quantity)
		if qty <= 0 {
			continue
		}
		acct.Holdings = append(acct.Holdings, market.Holding{
			Symbol:   strings.TrimSpace(row.Symbol),
			Name:     strings.TrimSpace(row.Name),
			Quantity: qty,
			AvgPrice: f64(row.AvgPrice),
		})
	}
	if len(out.Output2) > 0 {
		acct.Cash = f64(out.Output2[0].Cash)
		acct.TotalAsset = f64(out.Output2[0].TotalAsset)
	}
	return acct, nil
}
