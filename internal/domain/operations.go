package domain

// Operation names a ledger use case. Values double as metric and span labels.
type Operation string

const (
	OpRegisterPerson Operation = "register_person"
	OpUpdatePerson   Operation = "update_person"
	OpStartSession   Operation = "start_session"
	OpCreateAccount  Operation = "create_account"
	OpDeleteAccount  Operation = "delete_account"
	OpDeleteCustomer Operation = "delete_customer"
	OpDeposit        Operation = "deposit"
	OpWithdraw       Operation = "withdraw"
	OpTransfer       Operation = "transfer"
	OpTakeLoan       Operation = "take_loan"
	OpPayLoan        Operation = "pay_loan"
	OpChangePassword Operation = "change_password"
	OpRevealSecrets  Operation = "reveal_secrets"
	OpLoanStatus     Operation = "loan_status"
	OpBankReport     Operation = "bank_report"
	OpListPersons    Operation = "list_persons"
)
