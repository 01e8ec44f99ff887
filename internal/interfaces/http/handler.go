// @title           Bond Value Calculator API
// @version         1.0
// @description     Present value of fixed-coupon bonds from market parameters

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3001
// @BasePath  /api/v1

package http

import (
	"errors"
	"io"
	"net/http"

	appvaluation "bondcalc/internal/application/service/valuation"
	"bondcalc/internal/domain/entity/bond"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	bondsBasePath = "/api/v1/bonds"

	healthStatus           = "server is running"
	internalFailureMessage = "internal server error"
)

var (
	errBodyNotObject = errors.New("request body must be a JSON object")
	errBodyTooLarge  = errors.New("request body is too large")
	errMissingBonds  = errors.New("bonds array is required")
)

type Handler struct {
	router    *gin.Engine
	valuation *appvaluation.Service
	logger    logrus.FieldLogger
}

func NewHandler(svc *appvaluation.Service, logger logrus.FieldLogger, corsOrigins []string) *Handler {
	router := gin.New()

	h := &Handler{
		router:    router,
		valuation: svc,
		logger:    logger,
	}

	router.Use(
		requestID(),
		requestLogger(logger),
		gin.CustomRecoveryWithWriter(io.Discard, h.recoverPanic),
		corsMiddleware(corsOrigins),
	)
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/", h.health)

	bonds := h.router.Group(bondsBasePath)
	{
		bonds.POST("/value", h.valueBond)
		bonds.POST("/value/batch", h.valueBonds)
	}
}

// health reports liveness
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": healthStatus})
}

// valueBond computes the present value of one bond
// @Summary      Value bond
// @Description  Validate bond parameters and compute the present value rounded to cents
// @Tags         bonds
// @Accept       json
// @Produce      json
// @Param        bond  body      object  true  "faceValue, annualCouponRate, yearsToMaturity, annualMarketRate, paymentFrequency"
// @Success      200   {object}  valueResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /bonds/value [post]
func (h *Handler) valueBond(c *gin.Context) {
	raw, err := decodeObject(c)
	if err != nil {
		writeDecodeError(c, err)
		return
	}
	value, err := h.valuation.Value(c.Request.Context(), raw)
	if err != nil {
		h.writeValuationError(c, err)
		return
	}
	c.JSON(http.StatusOK, valueResponse{BondValue: value})
}

// valueBonds computes present values for a batch of bonds
// @Summary      Value bonds
// @Description  Value several bonds; each result holds either bondValue or error, in request order
// @Tags         bonds
// @Accept       json
// @Produce      json
// @Param        bonds  body      batchPayload  true  "Bond parameter list"
// @Success      200    {object}  batchResponse
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /bonds/value/batch [post]
func (h *Handler) valueBonds(c *gin.Context) {
	payload, err := decodeBatch(c)
	if err != nil {
		writeDecodeError(c, err)
		return
	}
	outcomes, err := h.valuation.ValueBatch(c.Request.Context(), payload.Bonds)
	if err != nil {
		if errors.Is(err, appvaluation.ErrBatchTooLarge) {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		h.writeInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBatchResponse(outcomes))
}

// writeDecodeError maps body errors; every decode failure is the caller's.
func writeDecodeError(c *gin.Context, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(c, http.StatusRequestEntityTooLarge, err)
		return
	}
	writeError(c, http.StatusBadRequest, err)
}

func (h *Handler) writeValuationError(c *gin.Context, err error) {
	if appvaluation.IsDomainError(err) {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	h.writeInternalError(c, err)
}

// writeInternalError logs the cause; the caller only sees a generic message.
func (h *Handler) writeInternalError(c *gin.Context, err error) {
	h.logger.WithFields(logrus.Fields{
		"request_id": requestIDFrom(c),
		"path":       c.Request.URL.Path,
	}).WithError(err).Error("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalFailureMessage})
}

func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	h.writeInternalError(c, panicError{value: recovered})
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = bond.ErrInternal
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
