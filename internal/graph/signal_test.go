package graph

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		name string
		text string
		want models.Action
	}{
		{"chinese buy", "决策：买入", models.ActionBuy},
		{"chinese sell", "综合考虑，建议卖出该股票。", models.ActionSell},
		{"chinese hold", "维持持有。", models.ActionHold},
		{"english exact", "BUY", models.ActionBuy},
		{"english lowercase", "sell", models.ActionSell},
		{"english padded", "  hold  ", models.ActionHold},
		{"embedded english", "Final answer: SELL due to weak guidance", models.ActionSell},
		{"earliest label wins", "买入。不要卖出。", models.ActionBuy},
		{"unrecognized defaults to hold", "市场前景不明朗。", models.ActionHold},
		{"empty defaults to hold", "", models.ActionHold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAction(tc.text))
		})
	}
}

func TestParseActionIdempotent(t *testing.T) {
	for _, text := range []string{"决策：买入", "SELL", "持有", "无法判断"} {
		first := ParseAction(text)
		assert.Equal(t, first, ParseAction(string(first)), "re-extracting %q changed the action", text)
	}
}

func TestExtract(t *testing.T) {
	e := NewSignalExtractor(&scriptedModel{replies: []*schema.Message{reply("卖出")}})

	action, err := e.Extract(context.Background(), "经过讨论，综合风险考量……")
	assert.NoError(t, err)
	assert.Equal(t, models.ActionSell, action)
}

func TestExtractModelFailureDefaultsToHold(t *testing.T) {
	e := NewSignalExtractor(&scriptedModel{})

	action, err := e.Extract(context.Background(), "决策文本")
	assert.Error(t, err)
	assert.Equal(t, models.ActionHold, action)
}
