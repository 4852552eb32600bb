// Package gateway defines the order egress boundary: the command records the
// engine emits and the contract concrete venue gateways implement.
package gateway

import "github.com/GarrickPinon/hft-engine/internal/core"

// OrderCommand is one new-order instruction bound for a venue.
type OrderCommand struct {
	SymbolID core.SymbolID
	OrderID  core.OrderID // client order id, engine-assigned, never reused
	Price    core.Price
	Qty      core.Quantity
	Side     core.Side
}

// CommandType tags a message on the egress ring.
type CommandType uint8

const (
	CommandNewOrder CommandType = 0
	CommandCancel   CommandType = 1
)

// Message is the envelope carried on the egress ring.
type Message struct {
	Type      CommandType
	Command   OrderCommand
	Timestamp core.Timestamp
}

// Gateway is the order entry contract. Both methods run on the engine thread
// and must not block; implementations enqueue and let their own egress worker
// do the network I/O.
type Gateway interface {
	SendOrder(cmd OrderCommand)
	CancelOrder(orderID core.OrderID, symbolID core.SymbolID)
}
