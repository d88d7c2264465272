package shop

import (
	"strconv"
	"strings"
)

// Action tokens carried by custom buttons.
const (
	TokenMainMenu = "menu:main"
	TokenCatalog  = "menu:catalog"
	TokenCart     = "menu:cart"
	TokenFAQ      = "menu:faq"
	TokenCheckout = "cart:checkout"
	TokenFAQClear = "faq:clear"
	TokenConfirm  = "product:confirm"
	TokenCancel   = "product:cancel"

	prefixAdd    = "cart:add:"
	prefixRemove = "cart:remove:"
)

// AddToken returns the "add to cart" token for a product.
func AddToken(productID int64) string {
	return prefixAdd + strconv.FormatInt(productID, 10)
}

// ParseAddToken extracts the product id from an "add to cart" token.
func ParseAddToken(token string) (int64, bool) {
	return parseID(token, prefixAdd)
}

// RemoveToken returns the "remove from cart" token for a cart line.
func RemoveToken(lineID int64) string {
	return prefixRemove + strconv.FormatInt(lineID, 10)
}

// ParseRemoveToken extracts the cart line id from a "remove" token.
func ParseRemoveToken(token string) (int64, bool) {
	return parseID(token, prefixRemove)
}

func parseID(token, prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(token, prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
