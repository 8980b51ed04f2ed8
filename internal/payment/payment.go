package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindCard         Kind = "card"
	KindBankTransfer Kind = "bank_transfer"
	KindCashVoucher  Kind = "cash_voucher"
)

var (
	ErrUnknownKind    = errors.New("unknown payment method type")
	ErrInvalidDetails = errors.New("invalid payment method details")
)

// Details is implemented only by the variants in this package.
type Details interface {
	Kind() Kind
	Validate() error
	// Label is a short masked description safe to show and log.
	Label() string
	sealed()
}

type Card struct {
	Brand      string `json:"brand"`
	Last4      string `json:"last4"`
	HolderName string `json:"holderName"`
	ExpMonth   int    `json:"expMonth"`
	ExpYear    int    `json:"expYear"`
}

func (Card) Kind() Kind { return KindCard }
func (Card) sealed()    {}

func (c Card) Validate() error {
	if c.Brand == "" || c.HolderName == "" {
		return fmt.Errorf("%w: brand and holderName are required", ErrInvalidDetails)
	}
	if len(c.Last4) != 4 || strings.Trim(c.Last4, "0123456789") != "" {
		return fmt.Errorf("%w: last4 must be 4 digits", ErrInvalidDetails)
	}
	if c.ExpMonth < 1 || c.ExpMonth > 12 {
		return fmt.Errorf("%w: expMonth out of range", ErrInvalidDetails)
	}
	now := time.Now().UTC()
	if c.ExpYear < now.Year() || (c.ExpYear == now.Year() && c.ExpMonth < int(now.Month())) {
		return fmt.Errorf("%w: card expired", ErrInvalidDetails)
	}
	return nil
}

func (c Card) Label() string { return c.Brand + " •••• " + c.Last4 }

type BankTransfer struct {
	BankName     string `json:"bankName"`
	AccountType  string `json:"accountType"`
	AccountLast4 string `json:"accountLast4"`
}

func (BankTransfer) Kind() Kind { return KindBankTransfer }
func (BankTransfer) sealed()    {}

func (b BankTransfer) Validate() error {
	if b.BankName == "" {
		return fmt.Errorf("%w: bankName is required", ErrInvalidDetails)
	}
	switch b.AccountType {
	case "SAVINGS", "CHECKING":
	default:
		return fmt.Errorf("%w: accountType must be SAVINGS or CHECKING", ErrInvalidDetails)
	}
	if len(b.AccountLast4) != 4 {
		return fmt.Errorf("%w: accountLast4 must be 4 characters", ErrInvalidDetails)
	}
	return nil
}

func (b BankTransfer) Label() string { return b.BankName + " " + b.AccountType + " •••• " + b.AccountLast4 }

type CashVoucher struct {
	Provider string `json:"provider"`
}

func (CashVoucher) Kind() Kind { return KindCashVoucher }
func (CashVoucher) sealed()    {}

func (v CashVoucher) Validate() error {
	if strings.TrimSpace(v.Provider) == "" {
		return fmt.Errorf("%w: provider is required", ErrInvalidDetails)
	}
	return nil
}

func (v CashVoucher) Label() string { return "Voucher " + v.Provider }

// Method is a saved payment method owned by one user.
type Method struct {
	ID        int
	UserID    int
	Alias     string
	IsDefault bool
	CreatedAt string
	Details   Details
}

type methodJSON struct {
	ID        int             `json:"paymentMethodId"`
	UserID    int             `json:"userId"`
	Alias     string          `json:"alias"`
	IsDefault bool            `json:"isDefault"`
	CreatedAt string          `json:"createdAt,omitempty"`
	Type      Kind            `json:"type"`
	Label     string          `json:"label,omitempty"`
	Details   json.RawMessage `json:"details"`
}

func (m Method) MarshalJSON() ([]byte, error) {
	if m.Details == nil {
		return nil, ErrUnknownKind
	}
	raw, err := json.Marshal(m.Details)
	if err != nil {
		return nil, err
	}
	return json.Marshal(methodJSON{
		ID:        m.ID,
		UserID:    m.UserID,
		Alias:     m.Alias,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
		Type:      m.Details.Kind(),
		Label:     m.Details.Label(),
		Details:   raw,
	})
}

func (m *Method) UnmarshalJSON(b []byte) error {
	var j methodJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	d, err := DecodeDetails(j.Type, j.Details)
	if err != nil {
		return err
	}
	*m = Method{ID: j.ID, UserID: j.UserID, Alias: j.Alias, IsDefault: j.IsDefault, CreatedAt: j.CreatedAt, Details: d}
	return nil
}

// DecodeDetails builds the variant named by kind from its JSON encoding.
func DecodeDetails(kind Kind, raw []byte) (Details, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch kind {
	case KindCard:
		var c Card
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case KindBankTransfer:
		var bt BankTransfer
		if err := json.Unmarshal(raw, &bt); err != nil {
			return nil, err
		}
		return bt, nil
	case KindCashVoucher:
		var v CashVoucher
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
