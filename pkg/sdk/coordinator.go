package sdk

import (
	"encoding/json"
	"net/http"
)

const (
	historyEndpoint = "/history"
	statusEndpoint  = "/status"
	healthEndpoint  = "/health"
)

type Record struct {
	Round    int     `json:"round"`
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

type HistoryPage struct {
	History []Record `json:"history"`
}

type Status struct {
	RunID        string  `json:"run_id"`
	Round        int     `json:"round"`
	TotalRounds  int     `json:"total_rounds"`
	Participants int     `json:"participants"`
	Fitting      bool    `json:"fitting"`
	LastLoss     float64 `json:"last_loss"`
	LastAccuracy float64 `json:"last_accuracy"`
}

type Health struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
}

func (sdk *coordSDK) GetHistory() (HistoryPage, error) {
	url := sdk.coordinatorURL + historyEndpoint

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return HistoryPage{}, err
	}

	var h HistoryPage
	if err := json.Unmarshal(body, &h); err != nil {
		return HistoryPage{}, err
	}

	return h, nil
}

func (sdk *coordSDK) GetStatus() (Status, error) {
	url := sdk.coordinatorURL + statusEndpoint

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return Status{}, err
	}

	var s Status
	if err := json.Unmarshal(body, &s); err != nil {
		return Status{}, err
	}

	return s, nil
}

func (sdk *coordSDK) Health() (Health, error) {
	url := sdk.coordinatorURL + healthEndpoint

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return Health{}, err
	}

	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return Health{}, err
	}

	return h, nil
}
