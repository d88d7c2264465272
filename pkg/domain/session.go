package domain

import (
	"strconv"
	"time"
)

// SceneName identifies a conversation state.
type SceneName string

const (
	SceneMainMenu SceneName = "main_menu"
	SceneCatalog  SceneName = "catalog"
	SceneCart     SceneName = "cart"
	SceneProduct  SceneName = "product"
	SceneFAQ      SceneName = "faq"
)

// Step is a sub-state of a scene. Only ProductProcessing uses steps.
type Step string

const (
	StepNone        Step = ""
	StepSetQuantity Step = "set_quantity"
	StepConfirm     Step = "confirm"
)

// CatalogContext is the Catalog scene's persisted data.
type CatalogContext struct {
	Engine *Snapshot `json:"engine,omitempty"`
}

// CartContext is the Cart scene's persisted data.
type CartContext struct {
	Engine *Snapshot `json:"engine,omitempty"`
	Total  int64     `json:"total"` // minor units
}

// FAQContext is the FAQ scene's persisted data.
type FAQContext struct {
	Engine *Snapshot `json:"engine,omitempty"`
	Search string    `json:"search,omitempty"`
}

// ProductContext holds the product being added to the cart.
type ProductContext struct {
	ProductID   int64  `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"` // minor units
	Stock       int    `json:"stock"`
	Quantity    int    `json:"quantity,omitempty"`
}

// Total returns price times quantity.
func (p *ProductContext) Total() int64 {
	return p.Price * int64(p.Quantity)
}

// Session is the per-user conversation state.
type Session struct {
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	Scene     SceneName `json:"scene"`
	Step      Step      `json:"step,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	Catalog *CatalogContext `json:"catalog,omitempty"`
	Cart    *CartContext    `json:"cart,omitempty"`
	FAQ     *FAQContext     `json:"faq,omitempty"`
	Product *ProductContext `json:"product,omitempty"`

	// Sealed holds an encrypted session when the store is wrapped by the encryption middleware.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession initializes a session positioned at the main menu.
func NewSession(userID, chatID int64) *Session {
	return &Session{
		UserID:    userID,
		ChatID:    chatID,
		Scene:     SceneMainMenu,
		UpdatedAt: time.Now(),
	}
}

// Reset clears all conversation state and positions the session at the main menu.
func (s *Session) Reset() {
	s.Scene = SceneMainMenu
	s.Step = StepNone
	s.Catalog = nil
	s.Cart = nil
	s.FAQ = nil
	s.Product = nil
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	if s.Catalog != nil {
		c.Catalog = &CatalogContext{Engine: s.Catalog.Engine.Clone()}
	}
	if s.Cart != nil {
		c.Cart = &CartContext{Engine: s.Cart.Engine.Clone(), Total: s.Cart.Total}
	}
	if s.FAQ != nil {
		c.FAQ = &FAQContext{Engine: s.FAQ.Engine.Clone(), Search: s.FAQ.Search}
	}
	if s.Product != nil {
		p := *s.Product
		c.Product = &p
	}
	return &c
}

// SessionKey returns the store key for a user.
func SessionKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
