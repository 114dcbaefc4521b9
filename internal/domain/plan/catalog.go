package plan

// DefaultPlans は初期投入用のプランカタログ。
// ID は購入 webhook のプランマッピングと一致させること。
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:          "iniciante",
			Name:        "Plano Iniciante",
			Price:       10,
			CheckoutURL: "#",
			Features: []string{
				"5 Produtos",
				"20 Agendamentos/mês",
				"20 Pré-Agendamentos/mês",
				"Dashboard Simples",
			},
			Permissions: Permissions{
				MaxProducts:                      5,
				MaxSchedulingsPerMonth:           20,
				MaxPreSchedulingsPerMonth:        20,
				MaxWhatsappConfirmationsPerMonth: 0,
				CanExportExcel:                   false,
				CanViewAnalytics:                 false,
				CanUseCepChecker:                 true,
			},
			Active: true,
		},
		{
			ID:          "intermediario",
			Name:        "Plano Chefe",
			Price:       49,
			CheckoutURL: "#",
			Features: []string{
				"Produtos Ilimitados",
				"Agendamentos Ilimitados",
				"Pré-Agendamentos Ilimitados",
				"50 Confirmações WhatsApp/mês",
				"Dashboard completo",
				"Relatórios básicos",
				"Acesso à Ferramenta de CEP",
			},
			Permissions: Permissions{
				MaxProducts:                      Unlimited,
				MaxSchedulingsPerMonth:           Unlimited,
				MaxPreSchedulingsPerMonth:        Unlimited,
				MaxWhatsappConfirmationsPerMonth: 50,
				CanExportExcel:                   true,
				CanViewAnalytics:                 false,
				CanUseCepChecker:                 true,
			},
			Popular: true,
			Active:  true,
		},
		{
			ID:          "bigode",
			Name:        "Plano Bigode",
			Price:       99,
			CheckoutURL: "#",
			Features: []string{
				"Tudo do Plano Chefe",
				"Confirmações WhatsApp Ilimitadas",
				"Suporte Prioritário",
				"Análise de Dados Avançada",
			},
			Permissions: Permissions{
				MaxProducts:                      Unlimited,
				MaxSchedulingsPerMonth:           Unlimited,
				MaxPreSchedulingsPerMonth:        Unlimited,
				MaxWhatsappConfirmationsPerMonth: Unlimited,
				CanExportExcel:                   true,
				CanViewAnalytics:                 true,
				CanUseCepChecker:                 true,
			},
			Active: true,
		},
	}
}
