package handler

/***************************************************************** request ****************************************************************/

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SwapReq struct {
	TokenIn     string `json:"token_in" validate:"required,eth_addr"`
	TokenOut    string `json:"token_out" validate:"required,eth_addr"`
	AmountIn    string `json:"amount_in" validate:"required"`
	SlippagePct int    `json:"slippage_pct" validate:"required,min=1,max=50"`
}

type AddLiquidityReq struct {
	TokenA      string `json:"token_a" validate:"required,eth_addr"`
	TokenB      string `json:"token_b" validate:"required,eth_addr"`
	AmountA     string `json:"amount_a" validate:"required"`
	AmountB     string `json:"amount_b"` // empty means derive from pool ratio
	SlippagePct int    `json:"slippage_pct" validate:"required,min=1,max=50"`
}

type RemoveLiquidityReq struct {
	TokenA      string `json:"token_a" validate:"required,eth_addr"`
	TokenB      string `json:"token_b" validate:"required,eth_addr"`
	Liquidity   string `json:"liquidity" validate:"required"`
	SlippagePct int    `json:"slippage_pct" validate:"required,min=1,max=50"`
}

type FarmReq struct {
	PoolID  int64  `json:"pool_id" validate:"min=0"`
	LPToken string `json:"lp_token" validate:"omitempty,eth_addr"`
	Amount  string `json:"amount"`
}

/***************************************************************** response ****************************************************************/

type JWTResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

type PairResp struct {
	Address  string `json:"address"`
	Token0   string `json:"token0"`
	Token1   string `json:"token1"`
	Symbol0  string `json:"symbol0"`
	Symbol1  string `json:"symbol1"`
	Reserve0 string `json:"reserve0"`
	Reserve1 string `json:"reserve1"`
	MidPrice string `json:"mid_price,omitempty"`
}

type CounterQuoteResp struct {
	Pair          string `json:"pair,omitempty"`
	TokenIn       string `json:"token_in"`
	TokenOut      string `json:"token_out"`
	AmountIn      string `json:"amount_in"`
	CounterAmount string `json:"counter_amount"`
	NewPool       bool   `json:"new_pool"`
}

type SwapQuoteResp struct {
	Pair      string `json:"pair"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

type DayDataResp struct {
	Date         int64  `json:"date"`
	VolumeToken0 string `json:"volume_token0"`
	VolumeToken1 string `json:"volume_token1"`
	VolumeUSD    string `json:"volume_usd"`
	ReserveUSD   string `json:"reserve_usd"`
	TxCount      int64  `json:"tx_count"`
}

type PendingRewardResp struct {
	PoolID  int64  `json:"pool_id"`
	Pending string `json:"pending"`
}
