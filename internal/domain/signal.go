package domain

// Signal is the output of a strategy for a prefix of bars ending at the
// current bar. The engine reevaluates it at every bar; strategies hold no
// position state.
type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalSell
)

// String devuelve el nombre del signal tal como se loguea y persiste.
func (s Signal) String() string {
	switch s {
	case SignalHold:
		return "HOLD"
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "INVALID"
	}
}

// Valid devuelve true si el signal es uno de los tres valores permitidos.
func (s Signal) Valid() bool {
	switch s {
	case SignalHold, SignalBuy, SignalSell:
		return true
	}
	return false
}
