package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Erros de validação de valores monetários.
var (
	ErrNotPositive = errors.New("value must be positive")
	ErrWrongScale  = errors.New("value must have exactly 2 decimal places")
)

// Amount representa um valor monetário (ou coeficiente de odd) com escala
// fixa de 2 casas decimais. A validação acontece em toda construção:
// parse de string, decode JSON e scan do banco.
type Amount struct {
	d decimal.Decimal
}

// Parse converte uma string decimal em Amount.
// Aceita apenas valores positivos com exatamente 2 casas decimais.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse é o Parse que entra em pânico; para uso em testes e seeds.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal valida um decimal já construído.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.Sign() <= 0 {
		return Amount{}, ErrNotPositive
	}
	if d.Exponent() != -2 {
		return Amount{}, ErrWrongScale
	}
	return Amount{d: d}, nil
}

// Decimal expõe o valor subjacente.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// IsZero informa se o Amount é o zero value (não inicializado).
func (a Amount) IsZero() bool { return a.d.IsZero() }

// Equal compara dois Amounts por valor.
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

func (a Amount) String() string {
	return a.d.StringFixed(2)
}

// MarshalJSON serializa como string decimal ("10.00"), o formato de fio
// usado entre line-provider e bet-maker.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON aceita string decimal ou literal numérico e valida o formato.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return ErrWrongScale
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implementa driver.Valuer para colunas NUMERIC(n,2).
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implementa sql.Scanner; o round-trip com o banco também valida.
func (a *Amount) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
