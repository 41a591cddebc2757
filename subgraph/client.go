package subgraph

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hasura/go-graphql-client"
	"github.com/rs/zerolog"
)

// Client reads pair state and history from the AMM's subgraph indexer.
type Client struct {
	gql *graphql.Client
	lg  zerolog.Logger
}

// NewClient creates a subgraph client for the given GraphQL endpoint.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		gql: graphql.NewClient(endpoint, httpClient),
		lg:  zerolog.New(os.Stdout).With().Str("Module", "Subgraph").Timestamp().Logger(),
	}
}

type tokenRow struct {
	Id       string `graphql:"id"`
	Symbol   string `graphql:"symbol"`
	Decimals string `graphql:"decimals"`
}

type pairRow struct {
	Id       string   `graphql:"id"`
	Token0   tokenRow `graphql:"token0"`
	Token1   tokenRow `graphql:"token1"`
	Reserve0 string   `graphql:"reserve0"`
	Reserve1 string   `graphql:"reserve1"`
}

// PairByTokens resolves the pair entity for two tokens in either order.
// Returns ErrPairNotFound when the pool has never been created.
func (c *Client) PairByTokens(ctx context.Context, a, b common.Address) (*Pair, error) {
	token0, token1, _ := OrderTokens(a, b)

	var q struct {
		Pairs []pairRow `graphql:"pairs(first: 1, where: {token0: $token0, token1: $token1})"`
	}

	vars := map[string]interface{}{
		"token0": strings.ToLower(token0.Hex()),
		"token1": strings.ToLower(token1.Hex()),
	}

	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("pair query for %s/%s: %w", token0.Hex(), token1.Hex(), err)
	}

	if len(q.Pairs) == 0 {
		return nil, ErrPairNotFound
	}

	pair, err := toPair(q.Pairs[0])
	if err != nil {
		return nil, err
	}

	c.lg.Debug().Str("pair", pair.Address.Hex()).
		Str("reserve0", pair.Reserve0.String()).Str("reserve1", pair.Reserve1.String()).
		Msg("Fetched pair reserves")

	return pair, nil
}

// PairByAddress fetches a single pair entity by its pool address.
func (c *Client) PairByAddress(ctx context.Context, pair common.Address) (*Pair, error) {
	var q struct {
		Pair *pairRow `graphql:"pair(id: $id)"`
	}

	vars := map[string]interface{}{
		"id": strings.ToLower(pair.Hex()),
	}

	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("pair query for %s: %w", pair.Hex(), err)
	}
	if q.Pair == nil {
		return nil, ErrPairNotFound
	}

	return toPair(*q.Pair)
}

type dayDataRow struct {
	Date              int64  `graphql:"date"`
	DailyVolumeToken0 string `graphql:"dailyVolumeToken0"`
	DailyVolumeToken1 string `graphql:"dailyVolumeToken1"`
	DailyVolumeUSD    string `graphql:"dailyVolumeUSD"`
	ReserveUSD        string `graphql:"reserveUSD"`
	DailyTxns         string `graphql:"dailyTxns"`
}

// PairDayDatas returns the most recent n daily aggregate rows for a pair.
func (c *Client) PairDayDatas(ctx context.Context, pairAddr common.Address, n int) ([]DayData, error) {
	pair, err := c.PairByAddress(ctx, pairAddr)
	if err != nil {
		return nil, err
	}

	var q struct {
		PairDayDatas []dayDataRow `graphql:"pairDayDatas(first: $n, orderBy: date, orderDirection: desc, where: {pairAddress: $pair})"`
	}

	vars := map[string]interface{}{
		"n":    n,
		"pair": strings.ToLower(pair.Address.Hex()),
	}

	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("pairDayDatas query for %s: %w", pair.Address.Hex(), err)
	}

	out := make([]DayData, 0, len(q.PairDayDatas))
	for _, row := range q.PairDayDatas {
		vol0, err := ParseBigDecimal(row.DailyVolumeToken0, pair.Token0.Decimals)
		if err != nil {
			return nil, fmt.Errorf("dailyVolumeToken0: %w", err)
		}
		vol1, err := ParseBigDecimal(row.DailyVolumeToken1, pair.Token1.Decimals)
		if err != nil {
			return nil, fmt.Errorf("dailyVolumeToken1: %w", err)
		}
		txns, _ := strconv.ParseInt(row.DailyTxns, 10, 64)

		out = append(out, DayData{
			Date:         row.Date,
			VolumeToken0: vol0,
			VolumeToken1: vol1,
			VolumeUSD:    row.DailyVolumeUSD,
			ReserveUSD:   row.ReserveUSD,
			TxCount:      txns,
		})
	}

	return out, nil
}

func toPair(row pairRow) (*Pair, error) {
	dec0, err := strconv.Atoi(row.Token0.Decimals)
	if err != nil {
		return nil, fmt.Errorf("token0 decimals %q: %w", row.Token0.Decimals, err)
	}
	dec1, err := strconv.Atoi(row.Token1.Decimals)
	if err != nil {
		return nil, fmt.Errorf("token1 decimals %q: %w", row.Token1.Decimals, err)
	}

	reserve0, err := ParseBigDecimal(row.Reserve0, dec0)
	if err != nil {
		return nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := ParseBigDecimal(row.Reserve1, dec1)
	if err != nil {
		return nil, fmt.Errorf("reserve1: %w", err)
	}

	return &Pair{
		Address:  common.HexToAddress(row.Id),
		Token0:   Token{Address: common.HexToAddress(row.Token0.Id), Symbol: row.Token0.Symbol, Decimals: dec0},
		Token1:   Token{Address: common.HexToAddress(row.Token1.Id), Symbol: row.Token1.Symbol, Decimals: dec1},
		Reserve0: reserve0,
		Reserve1: reserve1,
	}, nil
}
