package api

import (
	"net/http"

	"github.com/fedkit/fedkit/coordinator"
	pkgapi "github.com/fedkit/fedkit/pkg/api"
	"github.com/fedkit/fedkit/pkg/fl"
)

var (
	_ pkgapi.Response = (*historyResponse)(nil)
	_ pkgapi.Response = (*statusResponse)(nil)
)

type historyResponse struct {
	History fl.History `json:"history"`
}

func (r historyResponse) Code() int {
	return http.StatusOK
}

func (r historyResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r historyResponse) Empty() bool {
	return false
}

type statusResponse struct {
	coordinator.Status
}

func (r statusResponse) Code() int {
	return http.StatusOK
}

func (r statusResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r statusResponse) Empty() bool {
	return false
}
