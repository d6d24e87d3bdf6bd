// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

/*
Package inference is the resilient façade over the remote language model
used for sentiment scoring, insight extraction, and summary generation.

The remote dependency is unreliable, rate limited, and free to answer in
prose instead of JSON. The client therefore composes a result cache, a
weighted circuit breaker, an adaptive throttle, a structured-output
repairer, and an ordered batch scheduler so that every public operation
always returns a best-effort result. Callers never see transport or quota
errors; they see a Degraded annotation instead.

# Routing

Before every remote-eligible call the client runs one explicit decision,
in priority order:

 1. No remote endpoint configured: serve locally.
 2. Circuit open: serve locally, degraded.
 3. Active rate-limit cooldown: serve locally, degraded.
 4. Otherwise call the remote endpoint, repair the response, and fold the
    outcome into circuit and throttle state.

Single-text sentiment is always served from the cache or the local lexicon
analyzer; remote quota is reserved for the insight path. Batch sentiment
can be routed remotely with Config.RemoteSentiment.

# Degradation annotation

A sentiment result is Degraded when the remote path was unavailable at the
moment of the call, whatever route the policy would have chosen. The flag
is recomputed on every call, including cache hits, so it always describes
current health rather than the health at store time. Insight bundles carry
an additional DegradedReason naming the first cause.

# Error taxonomy

ErrRemoteUnavailable and ErrQuotaExceeded circulate between the endpoint
implementation and this client but never escape a public operation. An
unrepairable array-shaped response is the single surfaced failure
(repair.ErrMalformed); unrepairable object shapes degrade to a synthesized
bundle instead. A missing API key is reported once, when constructing the
endpoint, not per call.
*/
package inference
