package api

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/store"
	syncengine "github.com/yasinthaj/lovable-velaris-bridge/internal/sync"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/velaris"
)

type Handler struct {
	stores  *store.StoreManager
	sweeper *syncengine.Sweeper
	mux     *gin.Engine

	// NewVelaris builds a full client for the metadata proxy endpoints;
	// tests override it to point at a fake server.
	NewVelaris func(token string) *velaris.Client
}

func NewHandler(stores *store.StoreManager, sweeper *syncengine.Sweeper) *Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	h := &Handler{
		stores:     stores,
		sweeper:    sweeper,
		mux:        r,
		NewVelaris: velaris.NewClient,
	}
	h.routes()
	return h
}

// Router returns the underlying http.Handler (gin engine implements http.Handler)
func (h *Handler) Router() *gin.Engine { return h.mux }

func (h *Handler) routes() {
	h.mux.POST("/webhook/gong", h.gongWebhook)

	h.mux.GET("/config", h.getConfig)
	h.mux.PUT("/config", h.putConfig)

	h.mux.POST("/rules", h.createRule)
	h.mux.GET("/rules", h.listRules)
	h.mux.DELETE("/rules/:id", h.deleteRule)

	h.mux.GET("/sync-logs", h.listSyncLogs)

	h.mux.GET("/activity-types", h.activityTypes)
	h.mux.GET("/field-definitions", h.fieldDefinitions)
	h.mux.POST("/token/test", h.testToken)

	h.mux.POST("/sync/run", h.runSweep)
}

// webhookEvent is the call-completed notification Gong delivers.
type webhookEvent struct {
	CallID       string `json:"callId"`
	Status       string `json:"status"`
	Title        string `json:"title"`
	StartTime    string `json:"startTime"`
	Participants []struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"participants"`
}

// gongWebhook handles one call-completed event. Calls that are not done yet
// get a neutral acknowledgement so Gong does not redeliver; the same applies
// to calls that were already synced.
func (h *Handler) gongWebhook(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(400, gin.H{"error": "user_id parameter is required"})
		return
	}

	var ev webhookEvent
	if err := c.BindJSON(&ev); err != nil {
		c.JSON(400, gin.H{"error": "invalid json"})
		return
	}
	if ev.CallID == "" {
		c.JSON(400, gin.H{"error": "callId is required"})
		return
	}

	log.Printf("api: webhook received for user %s, call %s", userID, ev.CallID)

	cfg, err := h.stores.Config.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "integration config not found"})
			return
		}
		log.Printf("api: config lookup failed: %v", err)
		c.JSON(500, gin.H{"error": "internal"})
		return
	}
	if !cfg.HasCredentials() {
		c.JSON(400, gin.H{"error": "missing API credentials"})
		return
	}

	if ev.Status != "done" {
		log.Printf("api: call %s not completed yet, skipping", ev.CallID)
		c.JSON(200, gin.H{"message": "call not completed"})
		return
	}

	rules, err := h.stores.Rule.ListByUser(userID)
	if err != nil {
		log.Printf("api: rule lookup failed: %v", err)
		c.JSON(500, gin.H{"error": "internal"})
		return
	}

	orch := syncengine.NewOrchestrator(
		h.sweeper.NewSource(cfg.GongAPIKey),
		h.sweeper.NewTarget(cfg.VelarisToken),
		cfg, rules, h.stores.SyncLog,
	)
	res, err := orch.SyncCall(c.Request.Context(), ev.CallID, ev.Title, model.SyncTypeWebhook)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	if res.Outcome == syncengine.OutcomeSkipped {
		c.JSON(200, gin.H{"message": "call already synced"})
		return
	}
	c.JSON(200, gin.H{"success": true, "activity_id": res.ActivityID})
}

func (h *Handler) getConfig(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(400, gin.H{"error": "user_id parameter is required"})
		return
	}
	cfg, err := h.stores.Config.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		log.Printf("api: config lookup failed: %v", err)
		c.JSON(500, gin.H{"error": "internal"})
		return
	}
	c.JSON(200, cfg)
}

func (h *Handler) putConfig(c *gin.Context) {
	var in model.IntegrationConfig
	if err := c.BindJSON(&in); err != nil {
		c.JSON(400, gin.H{"error": "invalid json"})
		return
	}
	if in.UserID == "" {
		c.JSON(400, gin.H{"error": "user_id is required"})
		return
	}
	if existing, err := h.stores.Config.GetByUserID(in.UserID); err == nil {
		in.ID = existing.ID
	}
	if err := h.stores.Config.Upsert(&in); err != nil {
		log.Printf("api: config upsert failed: %v", err)
		c.JSON(500, gin.H{"error": "internal"})
		return
	}
	c.JSON(200, in)
}

func (h *Handler) createRule(c *gin.Context) {
	var in model.DeduplicationRule
	if err := c.BindJSON(&in); err != nil {
		c.JSON(400, gin.H{"error": "invalid json"})
		return
	}
	if in.UserID == "" || in.GongField == "" || in.VelarisField == "" {
		c.JSON(400, gin.H{"error": "user_id, gong_field and velaris_field are required"})
		return
	}
	if err := h.stores.Rule.Create(&in); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, in)
}

func (h *Handler) listRules(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(400, gin.H{"error": "user_id parameter is required"})
		return
	}
	rules, err := h.stores.Rule.ListByUser(userID)
	if err != nil {
		log.Printf("api: rule lookup failed: %v", err)
		c.JSON(500, gin.H{"error": "internal"})
		return
	}
	c.JSON(200, rules)
}

func (h *Handler) deleteRule(c *gin.Context) {
	userID := c.Query("user_id")
	id := c.Param("id")
	if userID == "" || id == "" {
		c.JSON(400, gin.H{"error": "user_id and rule id are required"})
		return
	}
	if err := h.stores.Rule.Delete(id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		log.Printf("api: rule delete failed: %v", err)
		c.JSON(500, gin.H{"error": "internal"})
		return
	}
	c.Status(204)
}

func (h *Handler) listSyncLogs(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(400, gin.H{"error": "user_id parameter is required"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := h.stores.SyncLog.ListByUser(userID, limit)
	if err != nil {
		log.Printf("api: sync log lookup failed: %v", err)
		c.JSON(500, gin.H{"error": "internal"})
		return
	}
	c.JSON(200, entries)
}

// velarisClientFor loads the user's config and returns a metadata client for
// their token.
func (h *Handler) velarisClientFor(c *gin.Context) (*velaris.Client, bool) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(400, gin.H{"error": "user_id parameter is required"})
		return nil, false
	}
	cfg, err := h.stores.Config.GetByUserID(userID)
	if err != nil || cfg.VelarisToken == "" {
		c.JSON(400, gin.H{"error": "velaris token not found, configure the integration first"})
		return nil, false
	}
	return h.NewVelaris(cfg.VelarisToken), true
}

func (h *Handler) activityTypes(c *gin.Context) {
	client, ok := h.velarisClientFor(c)
	if !ok {
		return
	}
	types, err := client.ActivityTypes(c.Request.Context())
	if err != nil {
		log.Printf("api: activity type fetch failed: %v", err)
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, types)
}

func (h *Handler) fieldDefinitions(c *gin.Context) {
	client, ok := h.velarisClientFor(c)
	if !ok {
		return
	}
	defs, err := client.FieldDefinitions(c.Request.Context())
	if err != nil {
		log.Printf("api: field definition fetch failed: %v", err)
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, defs)
}

func (h *Handler) testToken(c *gin.Context) {
	var in struct {
		Token string `json:"token"`
	}
	if err := c.BindJSON(&in); err != nil || in.Token == "" {
		c.JSON(400, gin.H{"error": "token is required"})
		return
	}
	if _, err := h.NewVelaris(in.Token).ActivityTypes(c.Request.Context()); err != nil {
		c.JSON(400, gin.H{"valid": false, "error": "invalid token or insufficient permissions"})
		return
	}
	c.JSON(200, gin.H{"valid": true})
}

// runSweep triggers a full scheduled-style sweep on demand.
func (h *Handler) runSweep(c *gin.Context) {
	processed, err := h.sweeper.RunAll(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"success": true, "processed_configs": processed})
}
