package normalize

import (
	"regexp"

	"github.com/motorscout/deals-cli/internal/model"
)

var (
	dealerPattern  = regexp.MustCompile(`\b(?:bazar|autobazar|predajca|dealer|s\.r\.o\.?|a\.s\.?|podnikatel)\b`)
	privatePattern = regexp.MustCompile(`\b(?:sukromna osoba|sukromny|private)\b`)
)

// InferSellerType classifies the seller from the seller descriptor and name.
// Dealer markers in the name beat a private claim in the descriptor; a dealer
// posing as a private seller is a risk signal downstream.
func InferSellerType(sellerName, descriptor string, existing model.SellerType) model.SellerType {
	if existing != model.SellerUnknown {
		return existing
	}
	name := Fold(sellerName)
	desc := Fold(descriptor)

	switch {
	case dealerPattern.MatchString(name) || dealerPattern.MatchString(desc):
		return model.SellerDealer
	case privatePattern.MatchString(desc):
		return model.SellerPrivate
	}
	return model.SellerUnknown
}

// LooksDisguised reports a seller name carrying dealer markers on a listing
// that claims to be private.
func LooksDisguised(l *model.Listing) bool {
	return l.SellerType == model.SellerPrivate && dealerPattern.MatchString(Fold(l.SellerName))
}
