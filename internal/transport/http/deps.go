package http

import (
	"github.com/quotation-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/quotation-api/internal/infrastructure/jwt"
	"github.com/quotation-api/internal/infrastructure/smtp"
	"github.com/quotation-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	QuotationRepo *dynamo.QuotationRepo
	CodeRepo      *dynamo.CodeRepo
	ActivityRepo  *dynamo.ActivityRepo
	Mailer        smtp.Mailer
	SMSSender     sns.SMSSender       // nil when SNS is unavailable
	JWTProvider   *jwtinfra.Provider  // nil when keys are missing
}
