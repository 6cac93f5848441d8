package installer

func providerIs(name string) func(*InstallState) bool {
	return func(s *InstallState) bool { return s.Provider() == name }
}

func getSteps() []Step {
	return []Step{
		&ChoiceStep{
			title:  "Select the provider that answers questions",
			envKey: "DOCCHAT_LLM_PROVIDER",
			choices: []choice{
				{label: "OpenAI", value: "openai"},
				{label: "Anthropic", value: "anthropic"},
				{label: "OpenRouter", value: "openrouter"},
				{label: "Ollama", value: "ollama"},
				{label: "Custom OpenAI-compatible", value: "custom"},
			},
		},
		NewInputStep("your OpenAI API Key", "DOCCHAT_OPENAI_API_KEY", "sk-...",
			secret(), skipUnless(providerIs("openai"))),
		NewInputStep("your Anthropic API Key", "DOCCHAT_ANTHROPIC_API_KEY", "sk-ant-...",
			secret(), skipUnless(providerIs("anthropic"))),
		NewInputStep("your OpenRouter API Key", "DOCCHAT_OPENROUTER_API_KEY", "sk-or-v1-...",
			secret(), skipUnless(providerIs("openrouter"))),
		NewInputStep("the Ollama Base URL", "DOCCHAT_OLLAMA_BASE_URL", "http://localhost:11434",
			withDefault("http://localhost:11434"), skipUnless(providerIs("ollama"))),
		NewInputStep("the Custom OpenAI Base URL", "DOCCHAT_CUSTOM_OPENAI_BASE_URL", "https://api.example.com",
			skipUnless(providerIs("custom"))),
		NewInputStep("the Custom API Key", "DOCCHAT_CUSTOM_OPENAI_API_KEY", "",
			secret(), optional(), skipUnless(providerIs("custom"))),
		NewModelStep(),
		&ChoiceStep{
			title:  "Select the embedding service",
			envKey: "DOCCHAT_EMBEDDING_PROVIDER",
			choices: []choice{
				{label: "OpenAI (text-embedding-ada-002)", value: "openai"},
				{label: "Ollama (nomic-embed-text)", value: "ollama"},
				{label: "Custom OpenAI-compatible", value: "custom"},
			},
		},
		NewInputStep("the Embedding Base URL", "DOCCHAT_EMBEDDING_BASE_URL", "https://api.example.com",
			skipUnless(func(s *InstallState) bool { return s.is("DOCCHAT_EMBEDDING_PROVIDER", "custom") })),
		NewInputStep("the Embedding Model", "DOCCHAT_EMBEDDING_MODEL", "text-embedding-3-small",
			skipUnless(func(s *InstallState) bool { return s.is("DOCCHAT_EMBEDDING_PROVIDER", "custom") })),
		NewInputStep("your OpenAI API Key for embeddings", "DOCCHAT_EMBEDDING_API_KEY", "sk-...",
			secret(), skipUnless(func(s *InstallState) bool {
				return s.is("DOCCHAT_EMBEDDING_PROVIDER", "openai") && s.EnvVars["DOCCHAT_OPENAI_API_KEY"] == ""
			})),
		&ChoiceStep{
			title:  "Select where document vectors are stored",
			envKey: "DOCCHAT_VECTOR_STORE",
			choices: []choice{
				{label: "SQLite (local file)", value: "sqlite"},
				{label: "Pinecone", value: "pinecone"},
				{label: "In memory (lost on restart)", value: "memory"},
			},
		},
		NewInputStep("the Pinecone index host", "DOCCHAT_PINECONE_INDEX_HOST", "my-index-abc123.svc.pinecone.io",
			skipUnless(func(s *InstallState) bool { return s.is("DOCCHAT_VECTOR_STORE", "pinecone") })),
		NewInputStep("your Pinecone API Key", "DOCCHAT_PINECONE_API_KEY", "pcsk_...",
			secret(), skipUnless(func(s *InstallState) bool { return s.is("DOCCHAT_VECTOR_STORE", "pinecone") })),
		&ChoiceStep{
			title:  "Select how you chat",
			envKey: "DOCCHAT_CHANNEL",
			choices: []choice{
				{label: "HTTP API and terminal", value: "http"},
				{label: "HTTP API, terminal and Telegram", value: "telegram"},
			},
		},
		NewInputStep("your Telegram Bot Token", "DOCCHAT_TELEGRAM_TOKEN", "123456789:ABCDEF...",
			secret(), skipUnless(func(s *InstallState) bool { return s.is("DOCCHAT_CHANNEL", "telegram") })),
		NewInputStep("your Telegram User ID (Owner)", "DOCCHAT_TELEGRAM_OWNER_ID", "123456789",
			skipUnless(func(s *InstallState) bool { return s.is("DOCCHAT_CHANNEL", "telegram") })),
		NewFinalizationStep(),
		NewSaveEnvStep(),
	}
}
