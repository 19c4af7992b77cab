package amqp

import (
	"encoding/json"
	"time"

	"thot/internal/core"
)

// ExpenseRecordedMessage announces a stored expense. It carries only the
// keys the limit check needs; the worker reloads anything else it wants.
type ExpenseRecordedMessage struct {
	ID             int64     `json:"id"`
	BusinessUnitID *int64    `json:"business_unit_id"`
	ExpenseTypeID  *int64    `json:"expense_type_id"`
	Date           string    `json:"date"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewExpenseRecordedMessage builds the message for a stored expense.
func NewExpenseRecordedMessage(e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:             e.ID,
		BusinessUnitID: e.BusinessUnitID,
		ExpenseTypeID:  e.ExpenseTypeID,
		Date:           e.Date.String(),
		Timestamp:      time.Now(),
	}
}

// ExpenseDate parses the message date.
func (m *ExpenseRecordedMessage) ExpenseDate() (core.Date, error) {
	return core.ParseDate(m.Date)
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
