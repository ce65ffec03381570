package synth

const modelTemplate = `// backend/models/{{.Model}}.js
const mongoose = require('mongoose');

const {{.Model}}Schema = new mongoose.Schema({
{{.Fields}}
}, {
  timestamps: {{.Timestamps}},
  toJSON: { virtuals: true },
  toObject: { virtuals: true }
});
{{- if .Indexes}}
{{range .Indexes}}
{{$.Model}}Schema.index({{.}});
{{- end}}
{{- end}}

// Middleware pre-save
{{.Model}}Schema.pre('save', async function(next) {
  // Agregar lógica personalizada aquí
  next();
});

// Métodos de instancia
{{.Model}}Schema.methods.toSafeObject = function() {
  const obj = this.toObject();
  // Remover campos sensibles si es necesario
  return obj;
};

// Métodos estáticos
{{.Model}}Schema.statics.findActive = function() {
  return this.find({ activo: true });
};

const {{.Model}} = mongoose.model('{{.Model}}', {{.Model}}Schema);
module.exports = {{.Model}};
`

const controllerTemplate = `// backend/controllers/{{.Controller}}.js
const {{.Model}} = require('../models/{{.Model}}');

{{.Handlers}}
`

// Shared blocks used by the handler templates.
const handlerBlocks = `
{{define "serverError"}}    res.status(500).json({
      message: 'Error interno del servidor',
      error: process.env.NODE_ENV !== 'production' ? error.message : undefined
    });{{end}}

{{define "validationError"}}    if (error.name === 'ValidationError') {
      const errores = Object.values(error.errors).map(err => err.message);
      return res.status(400).json({
        message: 'Errores de validación',
        errores
      });
    }{{end}}

{{define "notFound"}}    if (!{{.Camel}}) {
      return res.status(404).json({ message: '{{js .Model}} no encontrado' });
    }{{end}}
`

const getAllTemplate = `// @desc    Obtener todos los {{.Name}}s con paginación y filtros
// @route   GET {{.Prefix}}
// @access  {{.Access}}
exports.{{.Handler}} = async (req, res) => {
  try {
    const {
      page = 1,
      limit = 10,
      sort = '-createdAt',
      ...filters
    } = req.query;

    const pagina = parseInt(page, 10);
    const porPagina = parseInt(limit, 10);
    const skip = (pagina - 1) * porPagina;

    // Cada parámetro restante filtra por igualdad
    const query = {};
    Object.keys(filters).forEach(key => {
      if (filters[key] && filters[key] !== 'undefined') {
        query[key] = filters[key];
      }
    });

    const {{.Camel}}s = await {{.Model}}.find(query)
      .skip(skip)
      .limit(porPagina)
      .sort(sort);

    const total = await {{.Model}}.countDocuments(query);

    res.json({
      success: true,
      {{.Camel}}s,
      paginacion: {
        pagina_actual: pagina,
        total_paginas: Math.ceil(total / porPagina),
        total_elementos: total,
        elementos_por_pagina: porPagina
      }
    });
  } catch (error) {
    console.error('Error obteniendo {{js .Name}}s:', error);
{{template "serverError" .}}
  }
};`

const getByIDTemplate = `// @desc    Obtener un {{.Name}} por ID
// @route   GET {{.Prefix}}/:id
// @access  {{.Access}}
exports.{{.Handler}} = async (req, res) => {
  try {
    const { id } = req.params;

    const {{.Camel}} = await {{.Model}}.findById(id);

{{template "notFound" .}}

    res.json({
      success: true,
      {{.Camel}}
    });
  } catch (error) {
    console.error('Error obteniendo {{js .Name}}:', error);
{{template "serverError" .}}
  }
};`

const createTemplate = `// @desc    Crear un nuevo {{.Name}}
// @route   POST {{.Prefix}}
// @access  {{.Access}}
exports.{{.Handler}} = async (req, res) => {
  try {
    const {{.Camel}}Data = req.body;

    if (req.user) {
      {{.Camel}}Data.createdBy = req.user.id;
    }

    const nuevo{{.Model}} = new {{.Model}}({{.Camel}}Data);
    const {{.Camel}}Creado = await nuevo{{.Model}}.save();

    res.status(201).json({
      success: true,
      message: '{{js .Model}} creado exitosamente',
      {{.Camel}}: {{.Camel}}Creado
    });
  } catch (error) {
    console.error('Error creando {{js .Name}}:', error);

{{template "validationError" .}}

{{template "serverError" .}}
  }
};`

const updateTemplate = `// @desc    Actualizar un {{.Name}}
// @route   PUT {{.Prefix}}/:id
// @access  {{.Access}}
exports.{{.Handler}} = async (req, res) => {
  try {
    const { id } = req.params;
    const updateData = req.body;

    const {{.Camel}} = await {{.Model}}.findById(id);

{{template "notFound" .}}

    // Claves ausentes no se tocan; una clave enviada como null borra el campo
    Object.keys(updateData).forEach(key => {
      if (updateData[key] === undefined) {
        return;
      }
      {{.Camel}}[key] = updateData[key] === null ? undefined : updateData[key];
    });

    const {{.Camel}}Actualizado = await {{.Camel}}.save();

    res.json({
      success: true,
      message: '{{js .Model}} actualizado exitosamente',
      {{.Camel}}: {{.Camel}}Actualizado
    });
  } catch (error) {
    console.error('Error actualizando {{js .Name}}:', error);

{{template "validationError" .}}

{{template "serverError" .}}
  }
};`

const deleteTemplate = `// @desc    Eliminar un {{.Name}}
// @route   DELETE {{.Prefix}}/:id
// @access  {{.Access}}
exports.{{.Handler}} = async (req, res) => {
  try {
    const { id } = req.params;

    const {{.Camel}} = await {{.Model}}.findById(id);

{{template "notFound" .}}

    await {{.Camel}}.deleteOne();

    res.json({
      success: true,
      message: '{{js .Model}} eliminado exitosamente'
    });
  } catch (error) {
    console.error('Error eliminando {{js .Name}}:', error);
{{template "serverError" .}}
  }
};`

const customTemplate = `// @desc    Operación personalizada: {{.Handler}}
// @route   POST {{.Prefix}}{{.Path}}
// @access  {{.Access}}
exports.{{.Handler}} = async (req, res) => {
  try {
    // TODO: implementar la lógica de {{.Handler}}
    res.json({
      success: true,
      message: 'Operación {{js .Handler}} ejecutada exitosamente'
    });
  } catch (error) {
    console.error('Error en {{js .Handler}}:', error);
{{template "serverError" .}}
  }
};`

const routesTemplate = `// backend/routes/{{.RouteFile}}.js
const express = require('express');
const { {{.Imports}} } = require('../controllers/{{.Controller}}');
{{- if .Auth}}
const { protect, authorize } = require('../middleware/authMiddleware');
{{- end}}

const router = express.Router();

{{range .Routes}}{{.}}
{{end}}
module.exports = router;
`
