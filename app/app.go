package app

import (
	"fmt"

	"dexpilot/app/handler"
	"dexpilot/app/middleware"

	"github.com/gofiber/fiber/v2"
)

type Services struct {
	Users       handler.UserRetriever
	Pairs       handler.PairRetriever
	Snapshots   handler.SnapshotRetriever
	Quoter      handler.Quoter
	Trader      handler.Trader
	Submissions handler.SubmissionRetriever
	Decoder     handler.TxDecoder
}

func Run(port int, authKey, passKey string, svc Services) {

	app := fiber.New()

	middleware.SetupMiddleware(app)

	handler.NewAuthHandler(svc.Users, authKey, passKey).InitRoute(app)
	handler.NewPairHandler(svc.Pairs, svc.Snapshots, svc.Quoter).InitRoute(app)
	handler.NewTradeHandler(svc.Trader).InitRoute(app)
	handler.NewSubmissionHandler(svc.Submissions, svc.Decoder).InitRoute(app)

	app.Listen(fmt.Sprintf(":%d", port))
}
