// Prometheus metric definitions
//
// Copyright (c) 2024, 2025  The go-ttt authors
//
// This file is part of go-ttt.
//
// go-ttt is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-ttt is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-ttt. If not, see
// <http://www.gnu.org/licenses/>

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttt_sessions_connected",
		Help: "Number of currently connected sessions.",
	})

	ConnectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttt_connections_total",
		Help: "Total connections since server start.",
	}, []string{"transport"})

	MessagesRouted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttt_chat_messages_total",
		Help: "Total chat messages broadcast to the room.",
	})

	WhispersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttt_whispers_total",
		Help: "Total private messages delivered.",
	})

	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttt_login_failures_total",
		Help: "Total rejected login attempts.",
	})

	GamesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttt_games_completed_total",
		Help: "Total finished matches by outcome.",
	}, []string{"outcome"})
)
