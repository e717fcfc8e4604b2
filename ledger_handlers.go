package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paywise/models"
	"paywise/pkg/ledger"
)

func (a *api) balanceHandler(c *gin.Context) {
	acc, err := a.core.Balance(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.log.Error("balance lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": ledger.DecimalFromCents(acc.Balance)})
}

func (a *api) transferHandler(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
		To     string          `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cents, err := ledger.CentsFromDecimal(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	result, err := a.core.Transfer(c.Request.Context(), currentUserID(c), req.To, cents)
	if err != nil {
		a.renderLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transfer successful", "transferId": result.TransferID})
}

func (a *api) recordTransactionHandler(c *gin.Context) {
	var req struct {
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Description string          `json:"description"`
		IsReceived  bool            `json:"isReceived"`
		Category    string          `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cents, err := ledger.CentsFromDecimal(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	record, err := a.core.RecordTransaction(c.Request.Context(), currentUserID(c), cents, req.Description, req.IsReceived, req.Category)
	if err != nil {
		a.renderLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction added, account updated", "transaction": transactionJSON(*record)})
}

func (a *api) listTransactionsHandler(c *gin.Context) {
	filter := ledger.TransactionFilter{Category: c.Query("category")}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := c.Query("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		filter.To = &t
	}
	records, err := a.store.WithContext(c.Request.Context()).ListTransactions(currentUserID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, transactionJSON(r))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

func (a *api) listBudgetsHandler(c *gin.Context) {
	budgets, err := a.store.Budgets(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetJSON(b))
	}
	c.JSON(http.StatusOK, out)
}

func (a *api) createBudgetHandler(c *gin.Context) {
	var req struct {
		Category string          `json:"category" binding:"required"`
		Limit    decimal.Decimal `json:"limit" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limitCents, err := ledger.CentsFromDecimal(req.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	now := time.Now()
	budget := models.Budget{
		UserID:      currentUserID(c),
		Category:    req.Category,
		LimitAmount: limitCents,
		Month:       int(now.Month()),
		Year:        now.Year(),
	}
	if err := a.store.CreateBudget(&budget); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, budgetJSON(budget))
}

func (a *api) deleteBudgetHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := a.store.DeleteBudget(currentUserID(c), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "budget deleted"})
}

func (a *api) listGoalsHandler(c *gin.Context) {
	goals, err := a.store.Goals(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalJSON(g))
	}
	c.JSON(http.StatusOK, out)
}

func (a *api) createGoalHandler(c *gin.Context) {
	var req struct {
		Title  string          `json:"title" binding:"required"`
		Target decimal.Decimal `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	targetCents, err := ledger.CentsFromDecimal(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target"})
		return
	}
	goal := models.Goal{UserID: currentUserID(c), Title: req.Title, Target: targetCents}
	if err := a.store.CreateGoal(&goal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, goalJSON(goal))
}

func (a *api) deleteGoalHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := a.store.DeleteGoal(currentUserID(c), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "goal deleted"})
}

// renderLedgerError maps core error kinds to client responses. Anything not
// in the taxonomy is a storage failure: the scope was rolled back, so report
// a retryable 500 without leaking driver detail.
func (a *api) renderLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrRecipientNotFound),
		errors.Is(err, ledger.ErrRecipientAccountMissing),
		errors.Is(err, ledger.ErrSelfTransfer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		a.log.Error("ledger operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Amounts cross the API as decimal strings; cents stay internal.

func transactionJSON(t models.Transaction) gin.H {
	out := gin.H{
		"id":          t.ID,
		"amount":      ledger.DecimalFromCents(t.Amount),
		"description": t.Description,
		"isReceived":  t.IsReceived,
		"date":        t.Date,
		"category":    t.Category,
	}
	if t.TransferID != nil {
		out["transferId"] = *t.TransferID
	}
	return out
}

func budgetJSON(b models.Budget) gin.H {
	return gin.H{
		"id":       b.ID,
		"category": b.Category,
		"limit":    ledger.DecimalFromCents(b.LimitAmount),
		"spent":    ledger.DecimalFromCents(b.Spent),
		"month":    b.Month,
		"year":     b.Year,
	}
}

func goalJSON(g models.Goal) gin.H {
	return gin.H{
		"id":       g.ID,
		"title":    g.Title,
		"target":   ledger.DecimalFromCents(g.Target),
		"progress": ledger.DecimalFromCents(g.Progress),
	}
}
