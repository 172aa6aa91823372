package features

import (
	"log"

	"github.com/laboratorys/miniapp/internal/cache"
	"github.com/laboratorys/miniapp/internal/view"
)

// mockWalletAddress stands in until a real wallet provider is
// integrated.
const mockWalletAddress = "AD2xyz789abcDEF456ghiJKL789a4G"

// Wallet is the connect-wallet stub: Connect persists a placeholder
// address and Restore re-renders it on startup.
type Wallet struct {
	Cache   *cache.Store
	Display *view.Display
}

func NewWallet(store *cache.Store, display *view.Display) *Wallet {
	return &Wallet{Cache: store, Display: display}
}

func (w *Wallet) Connect() {
	if err := w.Cache.Save(cache.KeyWallet, mockWalletAddress); err != nil {
		log.Printf("wallet: persist address: %v", err)
	}
	w.Display.UpdateWallet(mockWalletAddress)
}

// Restore re-renders a previously connected address, if any.
func (w *Wallet) Restore() {
	var address string
	if w.Cache.Load(cache.KeyWallet, &address) && address != "" {
		w.Display.UpdateWallet(address)
	}
}
