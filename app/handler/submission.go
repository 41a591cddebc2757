package handler

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type SubmissionHandler struct {
	subs    SubmissionRetriever
	decoder TxDecoder
}

func NewSubmissionHandler(subs SubmissionRetriever, decoder TxDecoder) *SubmissionHandler {
	return &SubmissionHandler{
		subs:    subs,
		decoder: decoder,
	}
}

func (h *SubmissionHandler) InitRoute(app *fiber.App) {

	router := app.Group("/submissions")
	router.Get("/", h.Submissions)
	router.Get("/:txhash", h.Submission)
	router.Get("/:txhash/decode", h.DecodeSubmission)
}

func (h *SubmissionHandler) Submissions(c *fiber.Ctx) error {

	limit := c.QueryInt("limit", 50)

	subs, err := h.subs.RetrieveSubmissions(limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve submissions: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(subs)
}

func (h *SubmissionHandler) Submission(c *fiber.Ctx) error {

	txHash := c.Params("txhash")

	sub, err := h.subs.RetrieveSubmissionByTxHash(txHash)
	if err != nil {
		return fmt.Errorf("failed to retrieve submission %s: %w", txHash, err)
	}

	return c.Status(fiber.StatusOK).JSON(sub)
}

// DecodeSubmission re-reads the raw transaction from the chain and decodes
// its calldata against the router ABI.
func (h *SubmissionHandler) DecodeSubmission(c *fiber.Ctx) error {

	txHash := c.Params("txhash")

	decoded, err := h.decoder.DecodeByHash(common.HexToHash(txHash))
	if err != nil {
		return fmt.Errorf("failed to decode transaction %s: %w", txHash, err)
	}

	return c.Status(fiber.StatusOK).JSON(decoded)
}
