package calculator

import "errors"

var (
	ErrInvalidOperation = errors.New("invalid operation: must be one of add, subtract, multiply, divide")
	ErrDivisionByZero   = errors.New("cannot divide by zero")
)

const (
	OperationAdd      = "add"
	OperationSubtract = "subtract"
	OperationMultiply = "multiply"
	OperationDivide   = "divide"
)

// Compute evaluates operand1 <operation> operand2. The result of a stored
// calculation is always derived through this function, never set directly.
func Compute(operation string, operand1, operand2 float64) (float64, error) {
	switch operation {
	case OperationAdd:
		return operand1 + operand2, nil
	case OperationSubtract:
		return operand1 - operand2, nil
	case OperationMultiply:
		return operand1 * operand2, nil
	case OperationDivide:
		if operand2 == 0 {
			return 0, ErrDivisionByZero
		}
		return operand1 / operand2, nil
	default:
		return 0, ErrInvalidOperation
	}
}
