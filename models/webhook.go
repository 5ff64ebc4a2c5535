/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"time"

	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// Webhook receives push events for a service.
type Webhook struct {
	bun.BaseModel `bun:"table:webhooks,alias:wh"`
	Base

	ServiceID string          `bun:"service_id,type:varchar(36),notnull" json:"service_id"`
	Provider  WebhookProvider `bun:"provider,type:varchar(20),notnull" json:"provider"`
	Secret    string          `bun:"secret,type:varchar(255),notnull" json:"-"`
	URL       string          `bun:"url,type:varchar(500),notnull" json:"url"`
	IsActive  bool            `bun:"is_active,notnull" json:"is_active"`
}

var webhookSchema = types.NewEntitySchema("Webhook", "webhooks",
	columns("service_id", "provider", "secret", "url", "is_active")...).
	WithForeignKey("service_id", "services", types.OnDeleteCascade)

func (*Webhook) Schema() *types.EntitySchema { return webhookSchema }

// NewWebhook returns an active GitHub webhook for serviceID.
func NewWebhook(serviceID, url, secret string) *Webhook {
	return &Webhook{
		ServiceID: serviceID,
		Provider:  WebhookProviderGitHub,
		Secret:    secret,
		URL:       url,
		IsActive:  true,
	}
}

func (w *Webhook) Init(now time.Time) {
	w.Base.Init(now)
	if w.Provider == "" {
		w.Provider = WebhookProviderGitHub
	}
}

type WebhookPatch struct {
	Provider *WebhookProvider
	Secret   *string
	URL      *string
	IsActive *bool
}

func (p WebhookPatch) Apply(w *Webhook) []string {
	var c types.Changes
	types.Set(&c, "provider", &w.Provider, p.Provider)
	types.Set(&c, "secret", &w.Secret, p.Secret)
	types.Set(&c, "url", &w.URL, p.URL)
	types.Set(&c, "is_active", &w.IsActive, p.IsActive)
	return c
}
