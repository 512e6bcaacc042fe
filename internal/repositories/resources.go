package repositories

import "kidspace/internal/query"

// Tables touched outside the generic resource path.
const (
	TableCrianca            = "crianca"
	TableResponsavel        = "responsavel"
	TableCriancaResponsavel = "crianca_responsavel"
	TableCheckin            = "checkin"
	TableCheckinAtividade   = "checkin_atividade"
	TableCheckinCheckout    = "checkin_responsavel_checkout"
	TableUsuario            = "usuario"
	TableParametro          = "parametro"
)

var Criancas = &query.Resource{
	Name:  "criancas",
	Table: TableCrianca,
	Select: `SELECT c.*,
	(
		SELECT json_agg(to_jsonb(r) || jsonb_build_object('parentesco', cr.parentesco))
		FROM responsavel r
		JOIN crianca_responsavel cr ON r.id = cr.responsavel_id
		WHERE cr.crianca_id = c.id
	) AS responsaveis
FROM crianca c`,
	Fields: []query.Field{
		{Name: "id", Column: "c.id", Type: query.TypeInt},
		{Name: "nome_crianca", Column: "c.nome", Fuzzy: true},
		{
			Name:   "nome_responsavel",
			Column: "r_filtro.nome",
			Fuzzy:  true,
			Exists: "SELECT 1 FROM crianca_responsavel cr_filtro JOIN responsavel r_filtro ON cr_filtro.responsavel_id = r_filtro.id WHERE cr_filtro.crianca_id = c.id",
		},
	},
	SearchField:  "nome_crianca",
	DefaultOrder: "c.nome ASC",
}

var Responsaveis = &query.Resource{
	Name:   "responsaveis",
	Table:  TableResponsavel,
	Select: "SELECT * FROM responsavel",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "nome", Column: "nome", Fuzzy: true},
		{Name: "documento", Column: "documento"},
	},
	SearchField:  "nome",
	DefaultOrder: "nome ASC",
}

var Checkins = &query.Resource{
	Name:  "checkins",
	Table: TableCheckin,
	Select: `SELECT ch.*,
	(
		SELECT row_to_json(crianca_data)
		FROM (
			SELECT c.*,
			(
				SELECT json_agg(json_build_object(
					'id', r.id,
					'nome', r.nome,
					'documento', r.documento,
					'celular', r.celular,
					'email', r.email,
					'url_image', r.url_image,
					'parentesco', cr.parentesco
				))
				FROM responsavel r
				JOIN crianca_responsavel cr ON r.id = cr.responsavel_id
				WHERE cr.crianca_id = c.id
			) AS responsaveis
			FROM crianca c
			WHERE c.id = ch.crianca
		) crianca_data
	) AS crianca,
	row_to_json(re.*) AS responsavel_entrada,
	row_to_json(rs.*) AS responsavel_saida,
	row_to_json(gv.*) AS guarda_volume,
	row_to_json(fp.*) AS forma_pagamento,
	(
		SELECT json_agg(row_to_json(a.*))
		FROM checkin_atividade ca
		JOIN atividade a ON a.id = ca.atividade
		WHERE ca.checkin = ch.id
	) AS atividades,
	(
		SELECT json_agg(row_to_json(rc.*))
		FROM checkin_responsavel_checkout crc
		JOIN responsavel rc ON rc.id = crc.responsavel
		WHERE crc.checkin = ch.id
	) AS responsaveis_possiveis_checkout
FROM checkin ch
JOIN crianca c ON ch.crianca = c.id
JOIN responsavel re ON ch.responsavel_entrada = re.id
LEFT JOIN responsavel rs ON ch.responsavel_saida = rs.id
LEFT JOIN guarda_volume gv ON gv.id = ch.guarda_volume
LEFT JOIN forma_pagamento fp ON fp.id = ch.forma_pagamento`,
	Fields: []query.Field{
		{Name: "id", Column: "ch.id", Type: query.TypeInt},
		{Name: "crianca", Column: "ch.crianca", Type: query.TypeInt},
		{Name: "responsavel_entrada", Column: "ch.responsavel_entrada", Type: query.TypeInt},
		{Name: "responsavel_saida", Column: "ch.responsavel_saida", Type: query.TypeInt},
		{Name: "guarda_volume", Column: "ch.guarda_volume", Type: query.TypeInt},
		{Name: "forma_pagamento", Column: "ch.forma_pagamento", Type: query.TypeInt},
		{Name: "data_entrada", Column: "ch.data_entrada", Type: query.TypeTimestamp},
		{Name: "data_saida", Column: "ch.data_saida", Type: query.TypeTimestamp},
		{Name: "observacao", Column: "ch.observacao", Fuzzy: true},
	},
	DefaultOrder: "ch.data_entrada DESC",
	References:   []string{"crianca", "responsavel_entrada", "responsavel_saida", "guarda_volume", "forma_pagamento"},
}

var Atividades = &query.Resource{
	Name:   "atividades",
	Table:  "atividade",
	Select: "SELECT * FROM atividade",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "descricao", Column: "descricao", Fuzzy: true},
	},
	SearchField:  "descricao",
	DefaultOrder: "descricao ASC",
	Required:     []string{"descricao"},
}

var CentrosCusto = &query.Resource{
	Name:   "centros-custo",
	Table:  "centro_custo",
	Select: "SELECT * FROM centro_custo",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "descricao", Column: "descricao", Fuzzy: true},
	},
	SearchField:  "descricao",
	DefaultOrder: "descricao ASC",
}

var Naturezas = &query.Resource{
	Name:   "naturezas",
	Table:  "natureza",
	Select: "SELECT * FROM natureza",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "descricao", Column: "descricao", Fuzzy: true},
	},
	SearchField:  "descricao",
	DefaultOrder: "id DESC",
}

var Empresas = &query.Resource{
	Name:   "empresas",
	Table:  "empresa",
	Select: "SELECT * FROM empresa",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "descricao", Column: "descricao", Fuzzy: true},
		{Name: "cnpj", Column: "cnpj"},
	},
	SearchField:  "descricao",
	DefaultOrder: "descricao ASC",
}

var GuardasVolume = &query.Resource{
	Name:   "guardas-volume",
	Table:  "guarda_volume",
	Select: "SELECT * FROM guarda_volume",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "descricao", Column: "descricao", Fuzzy: true},
		{Name: "empresa", Column: "empresa", Type: query.TypeInt},
		{Name: "utilizado", Column: "utilizado", Type: query.TypeBool},
	},
	SearchField:  "descricao",
	DefaultOrder: "descricao ASC",
	References:   []string{"empresa"},
}

var Parceiros = &query.Resource{
	Name:   "parceiros",
	Table:  "parceiro",
	Select: "SELECT * FROM parceiro",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "nome", Column: "nome", Fuzzy: true},
		{Name: "pessoa_fisica", Column: "pessoa_fisica", Type: query.TypeBool},
		{Name: "cpf_cnpj", Column: "cpf_cnpj"},
		{Name: "telefone", Column: "telefone"},
		{Name: "email", Column: "email"},
		{Name: "cep", Column: "cep"},
		{Name: "cidade", Column: "cidade"},
		{Name: "estado", Column: "estado"},
		{Name: "bairro", Column: "bairro"},
		{Name: "endereco", Column: "endereco"},
		{Name: "cliente", Column: "cliente", Type: query.TypeBool},
		{Name: "fornecedor", Column: "fornecedor", Type: query.TypeBool},
		{Name: "funcionario", Column: "funcionario", Type: query.TypeBool},
		{Name: "transportador", Column: "transportador", Type: query.TypeBool},
		{Name: "agencia_bancaria", Column: "agencia_bancaria", Type: query.TypeBool},
	},
	SearchField:  "nome",
	DefaultOrder: "nome ASC",
}

var FormasPagamento = &query.Resource{
	Name:   "forma_pagamento",
	Table:  "forma_pagamento",
	Select: "SELECT * FROM forma_pagamento",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "descricao", Column: "descricao", Fuzzy: true},
		{Name: "ativo", Column: "ativo", Type: query.TypeBool},
	},
	SearchField:  "descricao",
	DefaultOrder: "id DESC",
}

var Usuarios = &query.Resource{
	Name:   "usuarios",
	Table:  TableUsuario,
	Select: "SELECT * FROM usuario",
	Fields: []query.Field{
		{Name: "id", Column: "id", Type: query.TypeInt},
		{Name: "login", Column: "login", Fuzzy: true},
	},
	SearchField:  "login",
	DefaultOrder: "id DESC",
	Hidden:       []string{"senha"},
}

var Convenios = &query.Resource{
	Name:  "convenios",
	Table: "convenio",
	Select: `SELECT c.*,
	row_to_json(p) AS parceiro,
	row_to_json(e) AS empresa,
	row_to_json(n) AS natureza,
	row_to_json(cc) AS centro_custo
FROM convenio c
LEFT JOIN parceiro p ON p.id = c.parceiro
LEFT JOIN empresa e ON e.id = c.empresa
LEFT JOIN natureza n ON n.id = c.natureza
LEFT JOIN centro_custo cc ON cc.id = c.centro_custo`,
	Fields: []query.Field{
		{Name: "id", Column: "c.id", Type: query.TypeInt},
		{Name: "descricao", Column: "c.descricao", Fuzzy: true},
		{Name: "parceiro", Column: "c.parceiro", Type: query.TypeInt},
		{Name: "empresa", Column: "c.empresa", Type: query.TypeInt},
		{Name: "natureza", Column: "c.natureza", Type: query.TypeInt},
		{Name: "centro_custo", Column: "c.centro_custo", Type: query.TypeInt},
	},
	SearchField:  "descricao",
	DefaultOrder: "c.descricao ASC",
	References:   []string{"parceiro", "empresa", "natureza", "centro_custo"},
}

var Financeiro = &query.Resource{
	Name:  "financeiro",
	Table: "financeiro",
	Select: `SELECT f.*,
	row_to_json(ch.*) AS checkin,
	row_to_json(p.*) AS parceiro,
	row_to_json(fp.*) AS forma_pagamento,
	to_jsonb(u) - 'senha' AS usuario
FROM financeiro f
LEFT JOIN checkin ch ON f.checkin = ch.id
LEFT JOIN parceiro p ON f.parceiro = p.id
LEFT JOIN forma_pagamento fp ON f.forma_pagamento = fp.id
LEFT JOIN usuario u ON f.usuario = u.id`,
	Fields: []query.Field{
		{Name: "id", Column: "f.id", Type: query.TypeInt},
		{Name: "checkin", Column: "f.checkin", Type: query.TypeInt},
		{Name: "parceiro", Column: "f.parceiro", Type: query.TypeInt},
		{Name: "forma_pagamento", Column: "f.forma_pagamento", Type: query.TypeInt},
		{Name: "usuario", Column: "f.usuario", Type: query.TypeInt},
		{Name: "receita_despesa", Column: "f.receita_despesa"},
		{Name: "data_negociacao", Column: "f.data_negociacao", Type: query.TypeDate},
	},
	DefaultOrder: "f.data_negociacao DESC",
	References:   []string{"checkin", "parceiro", "forma_pagamento", "usuario"},
	Hidden:       []string{"usuario.senha"},
	RangeAliases: []query.RangeAlias{{From: "data_inicio", To: "data_fim", Field: "data_negociacao"}},
}

// AllResources lists every resource served by the generic handlers.
func AllResources() []*query.Resource {
	return []*query.Resource{
		Criancas, Responsaveis, Checkins, Atividades, CentrosCusto, Naturezas, Empresas,
		GuardasVolume, Parceiros, FormasPagamento, Usuarios, Convenios, Financeiro,
	}
}
