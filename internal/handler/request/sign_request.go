package request

type EthTxRequest struct {
	Nonce    string `json:"nonce" binding:"required"`
	GasPrice string `json:"gas_price" binding:"required"`
	GasLimit string `json:"gas_limit" binding:"required"`
	To       string `json:"to" binding:"omitempty,eth_addr"`
	Value    string `json:"value" binding:"required"`
	Data     string `json:"data" binding:"hexdata"`
	ChainID  string `json:"chain_id"`
	Path     string `json:"path" binding:"required,bip32path"`
	Sender   string `json:"sender" binding:"required,eth_addr"`
	Payment  string `json:"payment" binding:"max=255"`
	Receiver string `json:"receiver" binding:"max=255"`
	Fee      string `json:"fee" binding:"max=255"`
}

type EthMessageRequest struct {
	Message string `json:"message" binding:"required"`
	IsHex   bool   `json:"is_hex"`
	Path    string `json:"path" binding:"required,bip32path"`
	Sender  string `json:"sender" binding:"required,eth_addr"`
}

type TronTxRequest struct {
	RawData string `json:"raw_data" binding:"required,hexdata"`
	Path    string `json:"path" binding:"required,bip32path"`
	Address string `json:"address" binding:"required,tron_addr"`
}

type TronMessageRequest struct {
	Message      string `json:"message" binding:"required"`
	IsHex        bool   `json:"is_hex"`
	IsTronHeader bool   `json:"is_tron_header"`
	Path         string `json:"path" binding:"required,bip32path"`
	Address      string `json:"address" binding:"required,tron_addr"`
}
