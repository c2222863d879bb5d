package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Etherscan mainnet API endpoint.
const DefaultBaseURL = "https://api.etherscan.io/api"

const requestTimeout = 30 * time.Second

// statusOK is the envelope status Etherscan reports for successful queries.
const statusOK = "1"

// noTransactionsFound accompanies a non-OK status when an account simply has
// no history. That is a legitimate empty result, not a failure.
const noTransactionsFound = "No transactions found"

// Client queries the Etherscan account API. Every call is a single plain
// request: no retries, no paging. Addresses with histories past the API's
// single-response window are out of scope.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a client for the given API endpoint. An empty baseURL
// selects the mainnet endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: requestTimeout},
	}
}

// envelope is Etherscan's generic response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// NativeTransactions returns the address's native-currency transaction
// history, oldest first.
func (c *Client) NativeTransactions(ctx context.Context, address string) ([]NativeTx, error) {
	var txs []NativeTx
	if err := c.accountQuery(ctx, "txlist", address, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// TokenTransfers returns the address's ERC-20 transfer event history, oldest
// first.
func (c *Client) TokenTransfers(ctx context.Context, address string) ([]TokenTx, error) {
	var txs []TokenTx
	if err := c.accountQuery(ctx, "tokentx", address, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Ping issues the cheapest call that exercises the endpoint and the API key.
// Watch mode's health check uses it to probe reachability.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{
		"module": {"proxy"},
		"action": {"eth_blockNumber"},
		"apikey": {c.apiKey},
	}
	env, err := c.get(ctx, params)
	if err != nil {
		return err
	}
	// Proxy actions answer JSON-RPC style without a status field; one is
	// only present when the API rejects the request.
	if env.Status != "" && env.Status != statusOK {
		return fmt.Errorf("etherscan: %s", apiMessage(env))
	}
	return nil
}

func (c *Client) accountQuery(ctx context.Context, action, address string, result any) error {
	params := url.Values{
		"module":     {"account"},
		"action":     {action},
		"address":    {address},
		"startblock": {"0"},
		"endblock":   {"99999999"},
		"sort":       {"asc"},
		"apikey":     {c.apiKey},
	}

	env, err := c.get(ctx, params)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	if env.Status != statusOK {
		// An empty account comes back through the API's error path.
		if env.Message == noTransactionsFound {
			return nil
		}
		return fmt.Errorf("%s: etherscan: %s", action, apiMessage(env))
	}

	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("%s: decoding result: %w", action, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, params url.Values) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &env, nil
}

// apiMessage folds the result detail Etherscan attaches to some errors (API
// key problems, rate limits) into the envelope message.
func apiMessage(env *envelope) string {
	var detail string
	if len(env.Result) > 0 {
		_ = json.Unmarshal(env.Result, &detail)
	}
	if detail != "" && detail != env.Message {
		return fmt.Sprintf("%s (%s)", env.Message, detail)
	}
	return env.Message
}
