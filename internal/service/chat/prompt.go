package chat

import (
	"strconv"
	"strings"

	"github.com/sandevgo/docchat/internal/core"
)

const condenseTemplate = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question.

Chat History:
{chat_history}
Follow Up Input: {question}
Standalone question:`

const answerTemplate = `You are an AI assistant providing helpful advice. You are given the following extracted parts of a long document and a question. Provide a conversational answer based on the context provided.
If you can't find the answer in the context below, just say "Hmm, I'm not sure." Don't try to make up an answer.
If the question is not related to the context, politely respond that you are tuned to only answer questions that are related to the context.

Question: {question}
=========
{context}
=========
Answer in Markdown:`

const noContextTemplate = `You are an AI assistant that answers questions about a document. No part of the document matched the question below, so you have no context to answer from.
Do not answer from your own knowledge. Say "Hmm, I'm not sure." and suggest that the user rephrase the question or upload a document that covers it.

Question: {question}
Answer in Markdown:`

// CondensePrompt asks the model to rewrite question as a standalone question.
func CondensePrompt(question string, history core.ChatHistory) string {
	r := strings.NewReplacer(
		"{chat_history}", FormatHistory(history),
		"{question}", question,
	)
	return r.Replace(condenseTemplate)
}

// AnswerPrompt grounds the answer in chunks. Without chunks the model is told to decline.
func AnswerPrompt(question string, chunks []core.ScoredChunk) string {
	if len(chunks) == 0 {
		return strings.ReplaceAll(noContextTemplate, "{question}", question)
	}
	r := strings.NewReplacer(
		"{question}", question,
		"{context}", FormatContext(chunks),
	)
	return r.Replace(answerTemplate)
}

func FormatHistory(history core.ChatHistory) string {
	var b strings.Builder
	for i, ex := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Human: ")
		b.WriteString(ex.Question)
		b.WriteString("\nAssistant: ")
		b.WriteString(ex.Answer)
	}
	return b.String()
}

// FormatContext renders chunks in retrieval order, each tagged with its source.
func FormatContext(chunks []core.ScoredChunk) string {
	var b strings.Builder
	for i, ch := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[" + strconv.Itoa(i+1) + "] source: ")
		source := ch.Metadata.Source
		if source == "" {
			source = "unknown"
		}
		b.WriteString(source)
		b.WriteByte('\n')
		b.WriteString(ch.Content)
	}
	return b.String()
}

// SanitizeQuestion trims the question and folds line breaks into spaces.
func SanitizeQuestion(q string) string {
	q = strings.TrimSpace(q)
	q = strings.ReplaceAll(q, "\r\n", " ")
	return strings.ReplaceAll(q, "\n", " ")
}
