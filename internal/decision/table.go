package decision

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"jongga/internal/pkg/format"
)

// RenderCandidateTable 스캔 결과 표 렌더링（로그 출력용）
func RenderCandidateTable(cands []Candidate) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "종목", "코드", "Tier", "현재가", "등락률", "기술", "감성", "합계", "테마"})
	for i, c := range cands {
		t.AppendRow(table.Row{
			i + 1,
			c.Snapshot.Name,
			c.Snapshot.Symbol,
			int(c.Tier),
			format.Won(c.Snapshot.Price),
			format.ChangePct(c.Snapshot.ChangePct),
			c.Technical.Score,
			c.Sentiment.Score,
			c.Combined,
			c.Snapshot.Theme,
		})
	}
	return t.Render()
}
