// Package events defines the typed conversation event contract.
//
// Every event delivered by the ingest client, decoded from a demo timeline,
// or injected directly implements [Event]. Kinds mirror the wire "type"
// discriminator:
//
//   - ConversationStarted (conversation_started): a conversation began; carries
//     the full ordered participant roster.
//   - AgentUtterance (agent_utterance): a participant spoke a full line; may
//     carry a reference to pre-rendered audio.
//   - AgentUtteranceChunk (agent_utterance_chunk): an append-only fragment of
//     the in-progress line. Never reaches the audio path.
//   - ThemeChanged (theme_changed): the visual theme should be re-applied.
//   - ConversationEnded (conversation_ended): the conversation is over.
//   - TimelineReset (timeline_reset): synthetic event emitted before a demo
//     seek replay; consumers drop all derived state. Never decoded from the
//     wire.
//
// Dispatch is an exhaustive type switch on the concrete event structs; the
// string kind exists only for the wire format and logging.
package events
