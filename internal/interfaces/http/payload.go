package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	appvaluation "bondcalc/internal/application/service/valuation"
	"bondcalc/internal/domain/entity/bond"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

type batchPayload struct {
	Bonds []map[string]any `json:"bonds"`
}

type valueResponse struct {
	BondValue bond.Money `json:"bondValue" swaggertype:"number" example:"1000.00"`
}

type batchItem struct {
	BondValue *bond.Money `json:"bondValue,omitempty" swaggertype:"number"`
	Error     string      `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
}

func newBatchResponse(outcomes []appvaluation.Outcome) batchResponse {
	items := make([]batchItem, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			items[i] = batchItem{Error: o.Err.Error()}
			continue
		}
		value := o.Value
		items[i] = batchItem{BondValue: &value}
	}
	return batchResponse{Results: items}
}

// decodeObject reads the body as a JSON object, keeping numbers as json.Number.
func decodeObject(c *gin.Context) (map[string]any, error) {
	var raw map[string]any
	if err := decodeBody(c, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errBodyNotObject
	}
	return raw, nil
}

func decodeBatch(c *gin.Context) (*batchPayload, error) {
	var payload batchPayload
	if err := decodeBody(c, &payload); err != nil {
		return nil, err
	}
	if payload.Bonds == nil {
		return nil, errMissingBonds
	}
	return &payload, nil
}

func decodeBody(c *gin.Context, dst any) error {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return bodyError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return fmt.Errorf("%w: %v", errBodyNotObject, err)
}
