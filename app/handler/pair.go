package handler

import (
	"fmt"
	"time"

	"dexpilot/dex/pkg/util"

	"github.com/gofiber/fiber/v2"
)

type PairHandler struct {
	pairs  PairRetriever
	snaps  SnapshotRetriever
	quoter Quoter
}

func NewPairHandler(pairs PairRetriever, snaps SnapshotRetriever, quoter Quoter) *PairHandler {
	return &PairHandler{
		pairs:  pairs,
		snaps:  snaps,
		quoter: quoter,
	}
}

func (h *PairHandler) InitRoute(app *fiber.App) {

	router := app.Group("/pairs")
	router.Get("/:token0/:token1", h.Pair)
	router.Get("/:token0/:token1/history", h.PairHistory)
	router.Get("/:token0/:token1/snapshots", h.PairSnapshots)

	quote := app.Group("/quote")
	quote.Get("/swap/:token_in/:token_out/:amount", h.SwapQuote)
	quote.Get("/counter/:token_in/:token_out/:amount", h.CounterQuote)
}

func (h *PairHandler) Pair(c *fiber.Ctx) error {

	a, err := parseAddress(c.Params("token0"))
	if err != nil {
		return err
	}
	b, err := parseAddress(c.Params("token1"))
	if err != nil {
		return err
	}

	pair, err := h.pairs.PairByTokens(c.Context(), a, b)
	if err != nil {
		return fmt.Errorf("failed to fetch pair: %w", err)
	}

	resp := PairResp{
		Address:  pair.Address.Hex(),
		Token0:   pair.Token0.Address.Hex(),
		Token1:   pair.Token1.Address.Hex(),
		Symbol0:  pair.Token0.Symbol,
		Symbol1:  pair.Token1.Symbol,
		Reserve0: pair.Reserve0.String(),
		Reserve1: pair.Reserve1.String(),
	}
	if mid := pair.MidPrice(); mid != nil {
		resp.MidPrice = mid.FloatString(18)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *PairHandler) PairHistory(c *fiber.Ctx) error {

	a, err := parseAddress(c.Params("token0"))
	if err != nil {
		return err
	}
	b, err := parseAddress(c.Params("token1"))
	if err != nil {
		return err
	}

	pair, err := h.pairs.PairByTokens(c.Context(), a, b)
	if err != nil {
		return fmt.Errorf("failed to fetch pair: %w", err)
	}

	days := c.QueryInt("days", 7)
	dayDatas, err := h.pairs.PairDayDatas(c.Context(), pair.Address, days)
	if err != nil {
		return fmt.Errorf("failed to fetch pair history: %w", err)
	}

	resp := make([]DayDataResp, 0, len(dayDatas))
	for _, d := range dayDatas {
		resp = append(resp, DayDataResp{
			Date:         d.Date,
			VolumeToken0: d.VolumeToken0.String(),
			VolumeToken1: d.VolumeToken1.String(),
			VolumeUSD:    d.VolumeUSD,
			ReserveUSD:   d.ReserveUSD,
			TxCount:      d.TxCount,
		})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *PairHandler) PairSnapshots(c *fiber.Ctx) error {

	a, err := parseAddress(c.Params("token0"))
	if err != nil {
		return err
	}
	b, err := parseAddress(c.Params("token1"))
	if err != nil {
		return err
	}

	pair, err := h.pairs.PairByTokens(c.Context(), a, b)
	if err != nil {
		return fmt.Errorf("failed to fetch pair: %w", err)
	}

	days := c.QueryInt("days", 7)
	since := time.Now().AddDate(0, 0, -days)

	snaps, err := h.snaps.RetrievePairSnapshots(pair.Address.Hex(), since)
	if err != nil {
		return fmt.Errorf("failed to fetch pair snapshots: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(snaps)
}

func (h *PairHandler) SwapQuote(c *fiber.Ctx) error {

	tokenIn, err := parseAddress(c.Params("token_in"))
	if err != nil {
		return err
	}
	tokenOut, err := parseAddress(c.Params("token_out"))
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(c.Params("amount"))
	if err != nil {
		return err
	}

	pair, err := h.pairs.PairByTokens(c.Context(), tokenIn, tokenOut)
	if err != nil {
		return fmt.Errorf("failed to fetch pair: %w", err)
	}

	reserveIn, reserveOut, err := pair.ReservesFor(tokenIn)
	if err != nil {
		return err
	}

	amountOut, err := util.GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return fmt.Errorf("swap quote failed: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(SwapQuoteResp{
		Pair:      pair.Address.Hex(),
		TokenIn:   tokenIn.Hex(),
		TokenOut:  tokenOut.Hex(),
		AmountIn:  amountIn.String(),
		AmountOut: amountOut.String(),
	})
}

func (h *PairHandler) CounterQuote(c *fiber.Ctx) error {

	tokenIn, err := parseAddress(c.Params("token_in"))
	if err != nil {
		return err
	}
	tokenOut, err := parseAddress(c.Params("token_out"))
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(c.Params("amount"))
	if err != nil {
		return err
	}

	quote, err := h.quoter.CounterAmount(c.Context(), tokenIn, tokenOut, amountIn)
	if err != nil {
		return fmt.Errorf("counter quote failed: %w", err)
	}

	resp := CounterQuoteResp{
		TokenIn:       quote.TokenIn.Hex(),
		TokenOut:      quote.TokenOut.Hex(),
		AmountIn:      quote.AmountIn.String(),
		CounterAmount: quote.CounterAmount.String(),
		NewPool:       quote.NewPool,
	}
	if !quote.NewPool {
		resp.Pair = quote.Pair.Hex()
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
