package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paywise/pkg/ledger"
)

const (
	accessTokenTTL = 24 * time.Hour
	refreshedTTL   = 15 * time.Minute
)

// api bundles the injected dependencies every handler needs. The ledger core
// is the only mutation path for money; a.db is used for auth and profile
// bookkeeping outside the ledger.
type api struct {
	db     *gorm.DB
	store  *ledger.Store
	core   *ledger.Core
	secret []byte
	log    *zap.Logger
}

// newAPI wires the dependency graph: one store handle, the aggregation
// subscriber, and the ledger core on top of it.
func newAPI(db *gorm.DB, secret []byte, logger *zap.Logger) *api {
	store := ledger.NewStore(db)
	core := ledger.NewCore(store, ledger.NewAggregator(store, logger), logger)
	return &api{db: db, store: store, core: core, secret: secret, log: logger}
}

func setupRoutes(r *gin.Engine, a *api) {
	v1 := r.Group("/api/v1")

	v1.POST("/user/signup", a.signupHandler)
	v1.POST("/user/signin", a.signinHandler)
	v1.POST("/user/refresh", a.refreshHandler)
	v1.POST("/user/revoke", a.revokeRefreshHandler)
	v1.GET("/user/bulk", a.searchUsersHandler)

	auth := v1.Group("")
	auth.Use(a.jwtAuthMiddleware())
	auth.PUT("/user", a.updateUserHandler)
	auth.GET("/user/payees", a.listPayeesHandler)
	auth.GET("/account/balance", a.balanceHandler)
	auth.POST("/account/transfer", a.transferHandler)
	auth.POST("/account/transactions", a.recordTransactionHandler)
	auth.GET("/account/transactions", a.listTransactionsHandler)
	auth.GET("/account/budgets", a.listBudgetsHandler)
	auth.POST("/account/budgets", a.createBudgetHandler)
	auth.DELETE("/account/budgets/:id", a.deleteBudgetHandler)
	auth.GET("/account/goals", a.listGoalsHandler)
	auth.POST("/account/goals", a.createGoalHandler)
	auth.DELETE("/account/goals/:id", a.deleteGoalHandler)
}

func (a *api) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(authHeader[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		sub, _ := claims["sub"].(string)
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		c.Set("userID", uint(id))
		c.Next()
	}
}

// currentUserID reads the authenticated user id set by jwtAuthMiddleware.
func currentUserID(c *gin.Context) uint {
	id, _ := c.Get("userID")
	uid, _ := id.(uint)
	return uid
}

func (a *api) signupHandler(c *gin.Context) {
	var req struct {
		Username        string           `json:"username" binding:"required"`
		Password        string           `json:"password" binding:"required"`
		FirstName       string           `json:"firstName" binding:"required"`
		LastName        string           `json:"lastName" binding:"required"`
		StartingBalance *decimal.Decimal `json:"startingBalance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var startingCents int64
	if req.StartingBalance != nil && !req.StartingBalance.IsZero() {
		cents, err := ledger.CentsFromDecimal(*req.StartingBalance)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid starting balance"})
			return
		}
		startingCents = cents
	}
	user, err := a.Register(req.Username, req.Password, req.FirstName, req.LastName, startingCents)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	token, err := a.issueToken(user, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := a.createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "user created successfully",
		"token":         token,
		"refresh_token": refreshToken,
	})
}

func (a *api) signinHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := a.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := a.issueToken(user, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := a.createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token, "refresh_token": refreshToken})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func (a *api) refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := a.findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	user, err := a.store.UserByID(rt.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	token, err := a.issueToken(*user, refreshedTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate: revoke the presented token before issuing its replacement
	a.db.Model(rt).Update("revoked", true)
	newRT, err := a.createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func (a *api) revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := a.findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := a.db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// updateUserHandler applies a partial profile update. The username (transfer
// handle) is immutable and not accepted here.
func (a *api) updateUserHandler(c *gin.Context) {
	var req struct {
		Password  *string `json:"password"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password too short (min 6)"})
			return
		}
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		updates["hashed_password"] = hashed
	}
	if err := a.store.UpdateUser(currentUserID(c), updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated successfully"})
}

// searchUsersHandler is the recipient lookup used by the transfer UI.
func (a *api) searchUsersHandler(c *gin.Context) {
	users, err := a.store.SearchUsers(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"_id":       u.ID,
			"username":  u.Username,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
		})
	}
	c.JSON(http.StatusOK, gin.H{"user": out})
}

func (a *api) listPayeesHandler(c *gin.Context) {
	contacts, err := a.store.Payees(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}
