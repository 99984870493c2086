package repository

// Set agrupa los repositorios atados a una misma transacción. El TxRunner
// construye uno por lote; los casos de uso lo reciben como argumento y así
// todas sus escrituras comparten atomicidad.
type Set struct {
	Lots        LotRepository
	Transfers   TransferRepository
	Receipts    ReceiptRepository
	Orders      OrderRepository
	Idempotency IdempotencyRepository
	Products    ProductRepository
	Employees   EmployeeRepository
}
