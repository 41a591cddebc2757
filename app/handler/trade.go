package handler

import (
	"fmt"
	"math/big"

	"dexpilot/dex"

	"github.com/gofiber/fiber/v2"
)

type TradeHandler struct {
	trader Trader
}

func NewTradeHandler(trader Trader) *TradeHandler {
	return &TradeHandler{
		trader: trader,
	}
}

func (h *TradeHandler) InitRoute(app *fiber.App) {

	router := app.Group("/trade")
	router.Post("/swap", h.Swap)
	router.Post("/liquidity", h.AddLiquidity)
	router.Delete("/liquidity", h.RemoveLiquidity)

	farm := app.Group("/farm")
	farm.Post("/stake", h.Stake)
	farm.Post("/unstake", h.Unstake)
	farm.Post("/:pool_id/harvest", h.Harvest)
	farm.Get("/:pool_id/pending", h.PendingReward)
}

func (h *TradeHandler) Swap(c *fiber.Ctx) error {

	var req SwapReq
	if err := c.BodyParser(&req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	tokenIn, err := parseAddress(req.TokenIn)
	if err != nil {
		return err
	}
	tokenOut, err := parseAddress(req.TokenOut)
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(req.AmountIn)
	if err != nil {
		return err
	}

	result, err := h.trader.Swap(&dex.SwapParams{
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		AmountIn:    amountIn,
		SlippagePct: req.SlippagePct,
	})
	if err != nil {
		return fmt.Errorf("swap failed: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *TradeHandler) AddLiquidity(c *fiber.Ctx) error {

	var req AddLiquidityReq
	if err := c.BodyParser(&req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	tokenA, err := parseAddress(req.TokenA)
	if err != nil {
		return err
	}
	tokenB, err := parseAddress(req.TokenB)
	if err != nil {
		return err
	}
	amountA, err := parseAmount(req.AmountA)
	if err != nil {
		return err
	}

	var amountB *big.Int
	if req.AmountB != "" {
		amountB, err = parseAmount(req.AmountB)
		if err != nil {
			return err
		}
	}

	result, err := h.trader.AddLiquidity(&dex.AddLiquidityParams{
		TokenA:      tokenA,
		TokenB:      tokenB,
		AmountA:     amountA,
		AmountB:     amountB,
		SlippagePct: req.SlippagePct,
	})
	if err != nil {
		return fmt.Errorf("add liquidity failed: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *TradeHandler) RemoveLiquidity(c *fiber.Ctx) error {

	var req RemoveLiquidityReq
	if err := c.BodyParser(&req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	tokenA, err := parseAddress(req.TokenA)
	if err != nil {
		return err
	}
	tokenB, err := parseAddress(req.TokenB)
	if err != nil {
		return err
	}
	liquidity, err := parseAmount(req.Liquidity)
	if err != nil {
		return err
	}

	result, err := h.trader.RemoveLiquidity(&dex.RemoveLiquidityParams{
		TokenA:      tokenA,
		TokenB:      tokenB,
		Liquidity:   liquidity,
		SlippagePct: req.SlippagePct,
	})
	if err != nil {
		return fmt.Errorf("remove liquidity failed: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *TradeHandler) Stake(c *fiber.Ctx) error {

	var req FarmReq
	if err := c.BodyParser(&req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	lpToken, err := parseAddress(req.LPToken)
	if err != nil {
		return err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}

	result, err := h.trader.StakeLP(&dex.FarmParams{
		PoolID:  big.NewInt(req.PoolID),
		LPToken: lpToken,
		Amount:  amount,
	})
	if err != nil {
		return fmt.Errorf("stake failed: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *TradeHandler) Unstake(c *fiber.Ctx) error {

	var req FarmReq
	if err := c.BodyParser(&req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}

	result, err := h.trader.UnstakeLP(&dex.FarmParams{
		PoolID: big.NewInt(req.PoolID),
		Amount: amount,
	})
	if err != nil {
		return fmt.Errorf("unstake failed: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *TradeHandler) Harvest(c *fiber.Ctx) error {

	poolID, err := c.ParamsInt("pool_id")
	if err != nil || poolID < 0 {
		return fmt.Errorf("invalid pool id")
	}

	result, err := h.trader.Harvest(big.NewInt(int64(poolID)))
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *TradeHandler) PendingReward(c *fiber.Ctx) error {

	poolID, err := c.ParamsInt("pool_id")
	if err != nil || poolID < 0 {
		return fmt.Errorf("invalid pool id")
	}

	pending, err := h.trader.PendingReward(big.NewInt(int64(poolID)))
	if err != nil {
		return fmt.Errorf("failed to read pending reward: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(PendingRewardResp{
		PoolID:  int64(poolID),
		Pending: pending.String(),
	})
}
