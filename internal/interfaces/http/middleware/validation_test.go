package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receiveBody struct {
	Quantity int64  `json:"quantity" binding:"required,min=1"`
	Aisle    string `json:"aisle" binding:"omitempty,aisle"`
	Email    string `json:"customer_email" binding:"omitempty,email"`
}

func bindRouter(got *[]dto.ValidationDetail) *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/receive", func(c *gin.Context) {
		var body receiveBody
		if err := c.ShouldBindJSON(&body); err != nil {
			*got = ValidationDetails(err)
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router http.Handler, body string) int {
	req := httptest.NewRequest(http.MethodPost, "/receive", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestAisleValidation(t *testing.T) {
	var details []dto.ValidationDetail
	router := bindRouter(&details)

	for _, aisle := range []string{"A3", "B-12/top", "Bay 4.2"} {
		assert.Equal(t, http.StatusOK, postJSON(router, `{"quantity":1,"aisle":"`+aisle+`"}`), aisle)
	}

	for _, aisle := range []string{" A3", "-B", "A;DROP", strings.Repeat("x", 51)} {
		details = nil
		assert.Equal(t, http.StatusBadRequest, postJSON(router, `{"quantity":1,"aisle":"`+aisle+`"}`), aisle)
		require.Len(t, details, 1)
		assert.Equal(t, "aisle", details[0].Field)
	}
}

func TestValidationDetails(t *testing.T) {
	var details []dto.ValidationDetail
	router := bindRouter(&details)

	assert.Equal(t, http.StatusBadRequest, postJSON(router, `{"quantity":0,"customer_email":"nope"}`))
	require.Len(t, details, 2)
	assert.Equal(t, "quantity", details[0].Field)
	assert.Equal(t, "This field is required", details[0].Message)
	assert.Equal(t, "customer_email", details[1].Field)
	assert.Equal(t, "Invalid email format", details[1].Message)

	other := ValidationDetails(errors.New("unexpected EOF"))
	require.Len(t, other, 1)
	assert.Equal(t, "body", other[0].Field)
}
